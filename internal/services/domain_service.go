package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/slotflare/slotflare/backend/internal/logger"
	"github.com/slotflare/slotflare/backend/internal/models"
)

// DomainService adopts zones that already exist in the user's Cloudflare
// account. Domains are never created or deleted remotely, only verified.
type DomainService struct {
	db      *gorm.DB
	history *HistoryService
	clients ClientFactory
}

func NewDomainService(db *gorm.DB, history *HistoryService, clients ClientFactory) *DomainService {
	return &DomainService{db: db, history: history, clients: clients}
}

// List returns the user's adopted domains.
func (s *DomainService) List(userID uint) ([]models.Domain, error) {
	var domains []models.Domain
	err := s.db.Where("user_id = ?", userID).Order("zone_name asc").Find(&domains).Error
	return domains, err
}

// Create verifies the zone exists in the user's Cloudflare account by exact
// name match, then persists a local record carrying the remote zone id and
// status. No remote mutation happens.
func (s *DomainService) Create(ctx context.Context, userID uint, domainName string) (*models.Domain, error) {
	if domainName == "" {
		return nil, validationf("domain name is required")
	}

	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	client, err := clientForUser(s.clients, user)
	if err != nil {
		return nil, err
	}

	zones, err := client.ListZones(ctx, domainName)
	if err != nil {
		s.history.Record(userID, models.ActionCreate, models.EntityDomain, "-",
			models.Snapshot{}, models.LogStatusError, err.Error())
		return nil, err
	}

	var zone *models.Domain
	for _, z := range zones {
		if z.Name == domainName {
			zone = &models.Domain{ZoneName: z.Name, ZoneID: z.ID, Status: z.Status}
			break
		}
	}
	if zone == nil {
		return nil, fmt.Errorf("domain not found in your Cloudflare account: %w", ErrNotFound)
	}

	var count int64
	if err := s.db.Model(&models.Domain{}).
		Where("user_id = ? AND zone_name = ?", userID, domainName).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{Msg: "Domain already added", EntityName: domainName}
	}

	domain := models.Domain{
		UserID:   userID,
		ZoneName: zone.ZoneName,
		ZoneID:   zone.ZoneID,
		Status:   zone.Status,
	}
	if err := s.db.Create(&domain).Error; err != nil {
		return nil, err
	}

	s.history.Record(userID, models.ActionCreate, models.EntityDomain, domain.UUID,
		snapshotForDomain(&domain), models.LogStatusSuccess, "")
	return &domain, nil
}

// Delete removes the local record only. It refuses while any non-deleted
// route references the domain.
func (s *DomainService) Delete(userID uint, uuid string) error {
	var domain models.Domain
	if err := s.db.Where("uuid = ? AND user_id = ?", uuid, userID).First(&domain).Error; err != nil {
		return ErrNotFound
	}

	var routesCount int64
	if err := s.db.Model(&models.WorkerRoute{}).
		Where("user_id = ? AND domain_id = ? AND status <> ?", userID, domain.ID, models.RouteStatusDeleted).
		Count(&routesCount).Error; err != nil {
		return err
	}
	if routesCount > 0 {
		return &ConflictError{
			Msg: "Cannot delete domain \"" + domain.ZoneName + "\": it is used by active routes. " +
				"Delete all routes using this domain first.",
			EntityName:  domain.ZoneName,
			RoutesCount: routesCount,
		}
	}

	if err := s.db.Delete(&domain).Error; err != nil {
		return err
	}

	s.history.Record(userID, models.ActionDelete, models.EntityDomain, domain.UUID,
		snapshotForDomain(&domain), models.LogStatusSuccess, "")
	return nil
}

// SyncZoneStatuses refreshes each adopted domain's status from Cloudflare.
// Run periodically as a reconciliation signal; failures are logged and the
// sweep continues.
func (s *DomainService) SyncZoneStatuses(ctx context.Context) {
	var domains []models.Domain
	if err := s.db.Find(&domains).Error; err != nil {
		logger.Log().WithError(err).Warn("zone status sync: fetch domains failed")
		return
	}

	for _, domain := range domains {
		user, err := s.user(domain.UserID)
		if err != nil {
			continue
		}
		client, err := clientForUser(s.clients, user)
		if err != nil {
			continue
		}

		zones, err := client.ListZones(ctx, domain.ZoneName)
		if err != nil {
			logger.WithFields(map[string]interface{}{"zone": domain.ZoneName}).
				WithError(err).Warn("zone status sync failed")
			continue
		}

		for _, z := range zones {
			if z.Name == domain.ZoneName && z.Status != domain.Status {
				if err := s.db.Model(&domain).Update("status", z.Status).Error; err == nil {
					logger.WithFields(map[string]interface{}{
						"zone":   domain.ZoneName,
						"status": z.Status,
					}).Info("zone status updated")
				}
			}
		}
	}
}

func (s *DomainService) user(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrNotFound
	}
	return &user, nil
}
