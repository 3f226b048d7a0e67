package services

import (
	"gorm.io/gorm"

	"github.com/slotflare/slotflare/backend/internal/logger"
	"github.com/slotflare/slotflare/backend/internal/metrics"
	"github.com/slotflare/slotflare/backend/internal/models"
)

// HistoryService appends deploy log entries and serves the history surface.
// Writes are best effort: a logging failure never masks or replaces the
// primary action's outcome.
type HistoryService struct {
	DB *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{DB: db}
}

// Record appends one audit entry for an orchestration attempt.
func (s *HistoryService) Record(userID uint, actionType, entityType, entityID string, snapshot models.Snapshot, status, errorMessage string) {
	entry := models.DeployLog{
		UserID:       userID,
		ActionType:   actionType,
		EntityType:   entityType,
		EntityID:     entityID,
		Snapshot:     snapshot,
		Status:       status,
		ErrorMessage: errorMessage,
	}

	metrics.IncDeployAttempt()
	if status == models.LogStatusError {
		metrics.IncDeployError()
	}

	if err := s.DB.Create(&entry).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"action": actionType,
			"entity": entityType,
		}).WithError(err).Warn("failed to write deploy log entry")
	}
}

// List returns the user's deploy history, newest first.
func (s *HistoryService) List(userID uint) ([]models.DeployLog, error) {
	var entries []models.DeployLog
	err := s.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&entries).Error
	return entries, err
}

// Clear removes all history entries belonging to the user.
func (s *HistoryService) Clear(userID uint) error {
	return s.DB.Where("user_id = ?", userID).Delete(&models.DeployLog{}).Error
}

// Snapshot builders. Each deploy log entry carries exactly one variant,
// matching its entity type.

func snapshotForDomain(d *models.Domain) models.Snapshot {
	if d == nil {
		return models.Snapshot{}
	}
	return models.Snapshot{Domain: domainSnapshot(d)}
}

func snapshotForScript(sc *models.WorkerScript) models.Snapshot {
	if sc == nil {
		return models.Snapshot{}
	}
	return models.Snapshot{Script: scriptSnapshot(sc)}
}

func snapshotForRoute(d *models.Domain, sc *models.WorkerScript, routePattern, routeID string) models.Snapshot {
	route := &models.RouteSnapshot{
		RoutePattern: routePattern,
		RouteID:      routeID,
	}
	if d != nil {
		route.Domain = domainSnapshot(d)
	}
	if sc != nil {
		route.Script = scriptSnapshot(sc)
	}
	return models.Snapshot{Route: route}
}

func domainSnapshot(d *models.Domain) *models.DomainSnapshot {
	return &models.DomainSnapshot{
		ZoneName: d.ZoneName,
		ZoneID:   d.ZoneID,
		Status:   d.Status,
	}
}

func scriptSnapshot(sc *models.WorkerScript) *models.ScriptSnapshot {
	return &models.ScriptSnapshot{
		ScriptName:     sc.ScriptName,
		Keywords:       sc.Keywords,
		WhitelistPaths: sc.WhitelistPaths,
		EnableAlert:    sc.EnableAlert,
	}
}
