package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotflare/slotflare/backend/internal/api/middleware"
	"github.com/slotflare/slotflare/backend/internal/cloudflare"
	"github.com/slotflare/slotflare/backend/internal/services"
)

// respondError maps service errors onto HTTP responses. Validation and
// conflict errors surface their message to the client; anything else is a
// generic 500 with the detail in the log only.
func respondError(c *gin.Context, err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
		return
	}

	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		body := gin.H{"error": conflict.Error()}
		if conflict.RoutesCount > 0 {
			body["routesCount"] = conflict.RoutesCount
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	var apiErr *cloudflare.APIError
	if errors.As(err, &apiErr) {
		middleware.GetRequestLogger(c).WithError(err).Error("cloudflare api request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": apiErr.Error()})
		return
	}

	middleware.GetRequestLogger(c).WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
