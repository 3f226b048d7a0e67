package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/slotflare/slotflare/backend/internal/api/middleware"
	"github.com/slotflare/slotflare/backend/internal/models"
	"github.com/slotflare/slotflare/backend/internal/services"
)

// CloudflareHandler exposes the user's Cloudflare connection state and a
// live credential check.
type CloudflareHandler struct {
	db      *gorm.DB
	clients services.ClientFactory
}

func NewCloudflareHandler(db *gorm.DB, clients services.ClientFactory) *CloudflareHandler {
	return &CloudflareHandler{db: db, clients: clients}
}

// Config reports whether credentials are configured. The token itself is
// never returned.
func (h *CloudflareHandler) Config(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, middleware.CurrentUserID(c)).Error; err != nil {
		respondError(c, services.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"configured": user.HasCloudflareCredentials(),
		"account_id": user.AccountID,
	})
}

// Status verifies the stored credentials against the live API with a zone
// listing call.
func (h *CloudflareHandler) Status(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, middleware.CurrentUserID(c)).Error; err != nil {
		respondError(c, services.ErrNotFound)
		return
	}
	if !user.HasCloudflareCredentials() {
		c.JSON(http.StatusOK, gin.H{"connected": false, "reason": "credentials not configured"})
		return
	}

	client := h.clients(user.CloudflareAPIToken, user.AccountID)
	zones, err := client.ListZones(c.Request.Context(), "")
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"connected": false, "reason": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"connected": true, "zones": len(zones)})
}
