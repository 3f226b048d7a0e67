package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotflare/slotflare/backend/internal/api/middleware"
	"github.com/slotflare/slotflare/backend/internal/models"
	"github.com/slotflare/slotflare/backend/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func userResponse(user *models.User) gin.H {
	return gin.H{
		"uuid":                  user.UUID,
		"email":                 user.Email,
		"name":                  user.Name,
		"trigger_alert_enabled": user.TriggerAlertEnabled,
		"has_credentials":       user.HasCloudflareCredentials(),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": userResponse(user)})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUser(middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

type CredentialsRequest struct {
	APIToken  string `json:"api_token" binding:"required"`
	AccountID string `json:"account_id" binding:"required"`
}

// UpdateCredentials stores the user's Cloudflare API token and account id.
func (h *AuthHandler) UpdateCredentials(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.UpdateCloudflareCredentials(middleware.CurrentUserID(c), req.APIToken, req.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

type AlertPreferenceRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// GetAlertPreference reports whether this user receives trigger alerts.
func (h *AuthHandler) GetAlertPreference(c *gin.Context) {
	user, err := h.auth.GetUser(middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": user.TriggerAlertEnabled})
}

// UpdateAlertPreference toggles whether this user receives trigger alerts.
func (h *AuthHandler) UpdateAlertPreference(c *gin.Context) {
	var req AlertPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.SetAlertPreference(middleware.CurrentUserID(c), *req.Enabled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}
