package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/niu-24-19333-stack/ScamShield/internal/model"
	"github.com/niu-24-19333-stack/ScamShield/internal/service"
)

type UserHandler struct {
	svc  *service.UserService
	auth *service.AuthService
}

func NewUserHandler(svc *service.UserService, auth *service.AuthService) *UserHandler {
	return &UserHandler{svc: svc, auth: auth}
}

// GetProfile godoc
// @Summary Get current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile.ToResponse())
}

// UpdateProfile godoc
// @Summary Update current user profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UserUpdateRequest true "Name and phone"
// @Success 200 {object} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/users/me [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), user.ID, req)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile.ToResponse())
}

// DeleteAccount godoc
// @Summary Deactivate the current account (soft delete)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.MessageResponse
// @Router /api/v1/users/me [delete]
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.auth.DeactivateAccount(c.Request.Context(), user.ID); err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{
		Status:  "success",
		Message: "Account deactivated successfully",
	})
}

// GetSettings godoc
// @Summary Get user settings
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserSettings
// @Router /api/v1/users/me/settings [get]
func (h *UserHandler) GetSettings(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	settings, err := h.svc.GetSettings(c.Request.Context(), user.ID)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary Update user settings
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UserSettingsUpdateRequest true "Settings fields to change"
// @Success 200 {object} model.UserSettings
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/users/me/settings [put]
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.UserSettingsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	settings, err := h.svc.UpdateSettings(c.Request.Context(), user.ID, req)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetStats godoc
// @Summary Get account stats
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserStatsResponse
// @Router /api/v1/users/me/stats [get]
func (h *UserHandler) GetStats(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.svc.GetStats(c.Request.Context(), user.ID)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GenerateAPIKey godoc
// @Summary Generate a new API key
// @Description Replaces any existing key. The full key is returned once.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.APIKeyResponse
// @Router /api/v1/users/me/api-key [post]
func (h *UserHandler) GenerateAPIKey(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	key, err := h.svc.GenerateAPIKey(c.Request.Context(), user.ID)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, key)
}

// GetAPIKeyInfo godoc
// @Summary Get API key metadata
// @Description The full key is never returned, only metadata.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.APIKeyInfo
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/users/me/api-key [get]
func (h *UserHandler) GetAPIKeyInfo(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	info, err := h.svc.GetAPIKeyInfo(c.Request.Context(), user.ID)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// RevokeAPIKey godoc
// @Summary Revoke the current API key
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.MessageResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/users/me/api-key [delete]
func (h *UserHandler) RevokeAPIKey(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.svc.RevokeAPIKey(c.Request.Context(), user.ID); err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{
		Status:  "success",
		Message: "API key revoked successfully",
	})
}
