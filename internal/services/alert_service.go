package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/slotflare/slotflare/backend/internal/logger"
	"github.com/slotflare/slotflare/backend/internal/metrics"
	"github.com/slotflare/slotflare/backend/internal/models"
)

// AlertService ingests blocked-request callbacks from deployed workers and
// serves the dashboard alert surface.
type AlertService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewAlertService(db *gorm.DB, notifier *NotificationService) *AlertService {
	return &AlertService{db: db, notifier: notifier}
}

// TriggerPayload is the JSON body a deployed worker POSTs when it blocks a
// request. Field names are part of the worker template contract.
type TriggerPayload struct {
	FullPath         string   `json:"fullPath"`
	ScriptName       string   `json:"scriptName"`
	Time             string   `json:"time"`
	SourceIP         string   `json:"sourceIP"`
	ResponseCode     int      `json:"responseCode"`
	DetectedKeywords []string `json:"detectedKeywords"`
}

// Ingest persists an alert for the callback, attributing it to the script's
// owner when the script is known. Unknown scripts still store the alert
// with a nil user. When any user with alerts enabled owns a script with
// alerts enabled, the notification hook fires asynchronously; its outcome
// never affects the ingestion result.
func (s *AlertService) Ingest(payload TriggerPayload) (*models.Alert, error) {
	if payload.FullPath == "" || payload.ScriptName == "" {
		return nil, validationf("fullPath and scriptName are required")
	}

	metrics.IncAlertReceived()

	alertTime := time.Now().UTC()
	if payload.Time != "" {
		if parsed, err := time.Parse(time.RFC3339, payload.Time); err == nil {
			alertTime = parsed
		}
	}

	var userID *uint
	var script models.WorkerScript
	if err := s.db.Where("script_name = ?", payload.ScriptName).First(&script).Error; err == nil {
		userID = &script.UserID
	}

	alert := models.Alert{
		UserID:           userID,
		ScriptName:       payload.ScriptName,
		FullPath:         payload.FullPath,
		Time:             alertTime,
		SourceIP:         payload.SourceIP,
		ResponseCode:     payload.ResponseCode,
		DetectedKeywords: payload.DetectedKeywords,
		Status:           models.AlertStatusNew,
	}
	if err := s.db.Create(&alert).Error; err != nil {
		// Storage trouble should not bounce the worker callback.
		logger.WithFields(map[string]interface{}{"script": payload.ScriptName}).
			WithError(err).Error("failed to persist alert")
		return &alert, nil
	}

	if s.eligibleForNotification() && s.notifier != nil {
		go s.notifier.AlertTriggered(&alert)
	}

	return &alert, nil
}

// eligibleForNotification reports whether any user with the trigger flag
// enabled owns a script with alerts enabled.
func (s *AlertService) eligibleForNotification() bool {
	var count int64
	err := s.db.Model(&models.WorkerScript{}).
		Joins("JOIN users ON users.id = worker_scripts.user_id").
		Where("users.trigger_alert_enabled = ? AND worker_scripts.enable_alert = ?", true, true).
		Count(&count).Error
	if err != nil {
		logger.Log().WithError(err).Warn("alert eligibility check failed")
		return false
	}
	return count > 0
}

// ScriptAlertConfig reports the alerting flags for one script and its
// owner, for troubleshooting why a worker's callbacks do or do not notify.
type ScriptAlertConfig struct {
	ScriptName        string `json:"script_name"`
	EnableAlert       bool   `json:"enable_alert"`
	OwnerAlertEnabled bool   `json:"owner_alert_enabled"`
	WillNotify        bool   `json:"will_notify"`
}

// ScriptAlertConfig resolves the script by name and joins in the owner's
// preference. Notification requires both flags.
func (s *AlertService) ScriptAlertConfig(scriptName string) (*ScriptAlertConfig, error) {
	var script models.WorkerScript
	if err := s.db.Where("script_name = ?", scriptName).First(&script).Error; err != nil {
		return nil, ErrNotFound
	}

	var owner models.User
	if err := s.db.First(&owner, script.UserID).Error; err != nil {
		return nil, ErrNotFound
	}

	return &ScriptAlertConfig{
		ScriptName:        script.ScriptName,
		EnableAlert:       script.EnableAlert,
		OwnerAlertEnabled: owner.TriggerAlertEnabled,
		WillNotify:        script.EnableAlert && owner.TriggerAlertEnabled,
	}, nil
}

// Stats reports alert system counters for the diagnostics endpoint.
type Stats struct {
	TotalAlerts      int64 `json:"total_alerts"`
	UsersWithAlert   int64 `json:"users_with_alert"`
	ScriptsWithAlert int64 `json:"scripts_with_alert"`
}

// Stats counts stored alerts and how many users/scripts have alerting on.
func (s *AlertService) Stats() (Stats, error) {
	var stats Stats
	if err := s.db.Model(&models.Alert{}).Count(&stats.TotalAlerts).Error; err != nil {
		return stats, err
	}
	if err := s.db.Model(&models.User{}).Where("trigger_alert_enabled = ?", true).
		Count(&stats.UsersWithAlert).Error; err != nil {
		return stats, err
	}
	err := s.db.Model(&models.WorkerScript{}).Where("enable_alert = ?", true).
		Count(&stats.ScriptsWithAlert).Error
	return stats, err
}

// List returns the user's alerts plus unattributed ones, newest first.
func (s *AlertService) List(userID uint) ([]models.Alert, error) {
	var alerts []models.Alert
	err := s.db.Where("user_id = ? OR user_id IS NULL", userID).
		Order("created_at desc").Find(&alerts).Error
	return alerts, err
}

// UpdateStatus transitions an alert between new/read/resolved.
func (s *AlertService) UpdateStatus(userID uint, uuid, status string) error {
	switch status {
	case models.AlertStatusNew, models.AlertStatusRead, models.AlertStatusResolved:
	default:
		return validationf("invalid status %q", status)
	}

	var alert models.Alert
	if err := s.db.Where("uuid = ? AND user_id = ?", uuid, userID).First(&alert).Error; err != nil {
		return ErrNotFound
	}

	return s.db.Model(&alert).Update("status", status).Error
}

// Delete removes one alert.
func (s *AlertService) Delete(uuid string) error {
	res := s.db.Where("uuid = ?", uuid).Delete(&models.Alert{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll clears every stored alert.
func (s *AlertService) DeleteAll() error {
	return s.db.Where("1 = 1").Delete(&models.Alert{}).Error
}
