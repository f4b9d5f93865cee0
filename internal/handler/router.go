package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/niu-24-19333-stack/ScamShield/internal/service"
)

// NewRouter wires every endpoint. Auth-core routes are public; everything
// under users/ plus change-password and me sit behind the bearer middleware,
// and admin/ additionally behind the role check.
func NewRouter(authSvc *service.AuthService, authH *AuthHandler, userH *UserHandler, adminH *AdminHandler, corsOrigins string) *gin.Engine {
	r := gin.Default()

	if corsOrigins != "" {
		r.Use(CORSMiddleware(strings.Split(corsOrigins, ","), true))
	}

	r.GET("/", Root)
	r.GET("/ping", Ping)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/logout", authH.Logout)
		auth.POST("/forgot-password", authH.ForgotPassword)
		auth.POST("/reset-password", authH.ResetPassword)
		auth.POST("/verify-email", authH.VerifyEmail)
		auth.POST("/google/code", authH.GoogleCode)
		auth.POST("/google/token", authH.GoogleToken)
		auth.POST("/github/code", authH.GitHubCode)

		authed := auth.Group("")
		authed.Use(AuthMiddleware(authSvc))
		authed.GET("/me", authH.Me)
		authed.POST("/change-password", authH.ChangePassword)
	}

	users := v1.Group("/users")
	users.Use(AuthMiddleware(authSvc))
	{
		users.GET("/me", userH.GetProfile)
		users.PUT("/me", userH.UpdateProfile)
		users.DELETE("/me", userH.DeleteAccount)
		users.GET("/me/settings", userH.GetSettings)
		users.PUT("/me/settings", userH.UpdateSettings)
		users.GET("/me/stats", userH.GetStats)
		users.POST("/me/api-key", userH.GenerateAPIKey)
		users.GET("/me/api-key", userH.GetAPIKeyInfo)
		users.DELETE("/me/api-key", userH.RevokeAPIKey)
	}

	admin := v1.Group("/admin")
	admin.Use(AuthMiddleware(authSvc), RequireAdmin())
	{
		admin.POST("/blacklist/purge", adminH.PurgeBlacklist)
	}

	return r
}
