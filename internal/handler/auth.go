package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/niu-24-19333-stack/ScamShield/internal/model"
	"github.com/niu-24-19333-stack/ScamShield/internal/service"
)

type AuthHandler struct {
	svc   *service.AuthService
	oauth *service.OAuthService
}

func NewAuthHandler(svc *service.AuthService, oauth *service.OAuthService) *AuthHandler {
	return &AuthHandler{svc: svc, oauth: oauth}
}

// Register godoc
// @Summary Register a new user
// @Description Creates a local account and returns a token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Email, password, name, phone"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, pair, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.AuthResponse{User: user.ToResponse(), Token: *pair})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, pair, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.AuthResponse{User: user.ToResponse(), Token: *pair})
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest true "Refresh token"
// @Success 200 {object} model.TokenResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Logout godoc
// @Summary Logout
// @Description Revokes the presented refresh token until its natural expiry.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} model.StatusResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "logged_out"})
}

// ForgotPassword godoc
// @Summary Request a password reset email
// @Description Response is identical whether or not the email exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.ForgotPasswordRequest true "Account email"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{
		Status:  "success",
		Message: "If the email exists, a reset link has been sent",
	})
}

// ResetPassword godoc
// @Summary Reset password with an emailed token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "password_reset"})
}

// VerifyEmail godoc
// @Summary Verify email with an emailed token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.VerifyEmailRequest true "Verification token"
// @Success 200 {object} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req model.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.svc.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// ChangePassword godoc
// @Summary Change password for the logged-in user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "password_changed"})
}

// Me godoc
// @Summary Get the identity behind the bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.MeResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, model.MeResponse{UserID: user.ID, Email: user.Email, Role: user.Role})
}

// GoogleCode godoc
// @Summary Login with a Google authorization code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.GoogleCodeRequest true "Authorization code"
// @Success 200 {object} model.AuthResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/auth/google/code [post]
func (h *AuthHandler) GoogleCode(c *gin.Context) {
	var req model.GoogleCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	info, err := h.oauth.ExchangeGoogleCode(c.Request.Context(), req.Code, req.RedirectURI)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	h.finishFederatedLogin(c, *info)
}

// GoogleToken godoc
// @Summary Login with a Google ID token (frontend flow)
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.GoogleTokenRequest true "ID token"
// @Success 200 {object} model.AuthResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/auth/google/token [post]
func (h *AuthHandler) GoogleToken(c *gin.Context) {
	var req model.GoogleTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	info, err := h.oauth.VerifyGoogleIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	h.finishFederatedLogin(c, *info)
}

// GitHubCode godoc
// @Summary Login with a GitHub authorization code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.GitHubCodeRequest true "Authorization code"
// @Success 200 {object} model.AuthResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/auth/github/code [post]
func (h *AuthHandler) GitHubCode(c *gin.Context) {
	var req model.GitHubCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	info, err := h.oauth.ExchangeGitHubCode(c.Request.Context(), req.Code)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	h.finishFederatedLogin(c, *info)
}

func (h *AuthHandler) finishFederatedLogin(c *gin.Context, info model.OAuthUserInfo) {
	user, pair, err := h.svc.LoginWithProvider(c.Request.Context(), info)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.AuthResponse{User: user.ToResponse(), Token: *pair})
}

// writeAuthError maps service failures to status codes. All
// authentication-class failures render the same body so responses carry no
// enumeration signal; the typed error stays available for internal logging.
func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.Is(err, service.ErrWrongPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "current password is incorrect"})
	case errors.Is(err, service.ErrTokenExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "token expired"})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDeactivated),
		errors.Is(err, service.ErrTokenInvalid),
		errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrOAuthExchange):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, service.ErrResetTokenInvalid),
		errors.Is(err, service.ErrVerifyTokenInvalid),
		errors.Is(err, service.ErrNoAPIKey):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrOAuthNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "provider not configured"})
	default:
		log.Printf("[Auth] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
