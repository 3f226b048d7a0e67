package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotflare/slotflare/backend/internal/services"
)

// TriggerHandler receives blocked-request callbacks from deployed workers.
// It is intentionally unauthenticated; workers hold no credentials.
type TriggerHandler struct {
	alerts *services.AlertService
}

func NewTriggerHandler(alerts *services.AlertService) *TriggerHandler {
	return &TriggerHandler{alerts: alerts}
}

func (h *TriggerHandler) Trigger(c *gin.Context) {
	var payload services.TriggerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := h.alerts.Ingest(payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert recorded", "uuid": alert.UUID})
}
