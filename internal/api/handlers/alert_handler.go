package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotflare/slotflare/backend/internal/api/middleware"
	"github.com/slotflare/slotflare/backend/internal/services"
)

type AlertHandler struct {
	alerts *services.AlertService
}

func NewAlertHandler(alerts *services.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

func (h *AlertHandler) List(c *gin.Context) {
	alerts, err := h.alerts.List(middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *AlertHandler) Stats(c *gin.Context) {
	stats, err := h.alerts.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ScriptConfig reports one script's alerting flags for troubleshooting.
func (h *AlertHandler) ScriptConfig(c *gin.Context) {
	cfg, err := h.alerts.ScriptAlertConfig(c.Param("scriptName"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type UpdateAlertStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AlertHandler) UpdateStatus(c *gin.Context) {
	var req UpdateAlertStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.alerts.UpdateStatus(middleware.CurrentUserID(c), c.Param("uuid"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert updated"})
}

func (h *AlertHandler) Delete(c *gin.Context) {
	if err := h.alerts.Delete(c.Param("uuid")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert deleted"})
}

func (h *AlertHandler) DeleteAll(c *gin.Context) {
	if err := h.alerts.DeleteAll(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All alerts deleted"})
}

// Test ingests a synthetic alert so users can verify their notification
// setup end to end.
func (h *AlertHandler) Test(c *gin.Context) {
	alert, err := h.alerts.Ingest(services.TriggerPayload{
		FullPath:         "https://example.com/test-alert",
		ScriptName:       "test-alert",
		SourceIP:         c.ClientIP(),
		ResponseCode:     403,
		DetectedKeywords: []string{"test"},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.alerts.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alert": alert, "stats": stats})
}
