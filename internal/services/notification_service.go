package services

import (
	"fmt"
	"strings"

	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/slotflare/slotflare/backend/internal/logger"
	"github.com/slotflare/slotflare/backend/internal/models"
)

// NotificationService dispatches external notifications through shoutrrr
// URLs stored as providers. It backs the alert-ingestion hook: eligibility
// decides whether it fires, providers decide where.
type NotificationService struct {
	DB *gorm.DB

	// send is swappable in tests.
	send func(url, message string) error
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db, send: shoutrrr.Send}
}

// ListProviders returns all configured providers.
func (s *NotificationService) ListProviders() ([]models.NotificationProvider, error) {
	var providers []models.NotificationProvider
	err := s.DB.Order("created_at asc").Find(&providers).Error
	return providers, err
}

// CreateProvider validates and stores a provider.
func (s *NotificationService) CreateProvider(p *models.NotificationProvider) error {
	if p.Name == "" {
		return validationf("provider name is required")
	}
	if p.URL == "" {
		return validationf("provider url is required")
	}
	return s.DB.Create(p).Error
}

// DeleteProvider removes a provider by UUID.
func (s *NotificationService) DeleteProvider(uuid string) error {
	res := s.DB.Where("uuid = ?", uuid).Delete(&models.NotificationProvider{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AlertTriggered fans an ingested alert out to every enabled provider that
// subscribed to alerts. Delivery failures are logged and swallowed; the
// ingestion path never depends on them.
func (s *NotificationService) AlertTriggered(alert *models.Alert) {
	var providers []models.NotificationProvider
	if err := s.DB.Where("enabled = ? AND notify_alerts = ?", true, true).Find(&providers).Error; err != nil {
		logger.Log().WithError(err).Warn("failed to fetch notification providers")
		return
	}

	message := fmt.Sprintf("Content blocked by %s: %s (keywords: %s, source: %s)",
		alert.ScriptName, alert.FullPath,
		strings.Join(alert.DetectedKeywords, ", "), alert.SourceIP)

	for _, provider := range providers {
		if err := s.send(provider.URL, message); err != nil {
			logger.WithFields(map[string]interface{}{"provider": provider.Name}).
				WithError(err).Warn("notification delivery failed")
		}
	}
}
