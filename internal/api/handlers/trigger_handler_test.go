package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/slotflare/slotflare/backend/internal/api/handlers"
	"github.com/slotflare/slotflare/backend/internal/models"
	"github.com/slotflare/slotflare/backend/internal/services"
)

func setupTriggerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := handlers.OpenTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.WorkerScript{}, &models.Alert{}, &models.NotificationProvider{}))

	alertService := services.NewAlertService(db, nil)
	handler := handlers.NewTriggerHandler(alertService)

	r := gin.New()
	r.POST("/api/trigger", handler.Trigger)
	return r, db
}

func TestTriggerStoresAlert(t *testing.T) {
	r, db := setupTriggerTest(t)

	body, _ := json.Marshal(map[string]interface{}{
		"fullPath":         "https://example.com/blocked",
		"scriptName":       "edge-filter",
		"time":             "2026-08-30T10:00:00Z",
		"sourceIP":         "203.0.113.7",
		"responseCode":     403,
		"detectedKeywords": []string{"casino"},
	})
	req, _ := http.NewRequest(http.MethodPost, "/api/trigger", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var alert models.Alert
	require.NoError(t, db.First(&alert).Error)
	assert.Equal(t, "edge-filter", alert.ScriptName)
	assert.Equal(t, "https://example.com/blocked", alert.FullPath)
	assert.Nil(t, alert.UserID)
	assert.Equal(t, models.AlertStatusNew, alert.Status)
	assert.Equal(t, models.StringList{"casino"}, alert.DetectedKeywords)
}

func TestTriggerRejectsIncompletePayload(t *testing.T) {
	r, db := setupTriggerTest(t)

	body := []byte(`{"scriptName":"edge-filter"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/trigger", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Alert{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTriggerRejectsMalformedJSON(t *testing.T) {
	r, _ := setupTriggerTest(t)

	req, _ := http.NewRequest(http.MethodPost, "/api/trigger", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
