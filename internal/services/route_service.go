package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/slotflare/slotflare/backend/internal/models"
	"github.com/slotflare/slotflare/backend/internal/worker"
)

// RouteService orchestrates Worker route bindings: script deploy + remote
// route create/update/delete + the local record, with a deploy log entry
// per attempt. Partial remote failures are not rolled back; the log entry
// is the reconciliation signal.
type RouteService struct {
	db      *gorm.DB
	history *HistoryService
	clients ClientFactory
	baseURL string
}

func NewRouteService(db *gorm.DB, history *HistoryService, clients ClientFactory, baseURL string) *RouteService {
	return &RouteService{db: db, history: history, clients: clients, baseURL: baseURL}
}

// CreateRouteInput binds a script to a domain at a URL pattern.
type CreateRouteInput struct {
	DomainUUID   string `json:"domain_uuid"`
	ScriptName   string `json:"script_name"`
	RoutePattern string `json:"route_pattern"`
}

// UpdateRouteInput carries partial updates; empty fields keep current values.
type UpdateRouteInput struct {
	ScriptName   string `json:"script_name"`
	RoutePattern string `json:"route_pattern"`
}

// RouteDetail is a route joined with its domain and script policy summary
// for the dashboard listing.
type RouteDetail struct {
	models.WorkerRoute
	ZoneName string                 `json:"zone_name"`
	Script   *models.ScriptSnapshot `json:"script,omitempty"`
}

// List returns the user's non-deleted routes with joined domain and script
// data, newest first.
func (s *RouteService) List(userID uint) ([]RouteDetail, error) {
	var routes []models.WorkerRoute
	if err := s.db.Where("user_id = ? AND status <> ?", userID, models.RouteStatusDeleted).
		Order("created_at desc").Find(&routes).Error; err != nil {
		return nil, err
	}

	details := make([]RouteDetail, 0, len(routes))
	for _, route := range routes {
		detail := RouteDetail{WorkerRoute: route, ZoneName: "-"}

		var domain models.Domain
		if err := s.db.First(&domain, route.DomainID).Error; err == nil {
			detail.ZoneName = domain.ZoneName
		}

		var script models.WorkerScript
		if err := s.db.Where("user_id = ? AND script_name = ?", userID, route.ScriptName).
			First(&script).Error; err == nil {
			detail.Script = scriptSnapshot(&script)
		}

		details = append(details, detail)
	}
	return details, nil
}

// Create deploys the referenced script, creates the remote route, and only
// then persists the local record with the returned route id. A remote
// failure writes an error log entry and propagates; no local route record
// is created.
func (s *RouteService) Create(ctx context.Context, userID uint, in CreateRouteInput) (*models.WorkerRoute, error) {
	if in.DomainUUID == "" || in.ScriptName == "" || in.RoutePattern == "" {
		return nil, validationf("domain_uuid, script_name and route_pattern are required")
	}

	var domain models.Domain
	if err := s.db.Where("uuid = ? AND user_id = ?", in.DomainUUID, userID).First(&domain).Error; err != nil {
		return nil, ErrNotFound
	}

	var script models.WorkerScript
	if err := s.db.Where("user_id = ? AND script_name = ?", userID, in.ScriptName).First(&script).Error; err != nil {
		return nil, ErrNotFound
	}

	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	client, err := clientForUser(s.clients, user)
	if err != nil {
		return nil, err
	}

	source, err := worker.Generate(s.policy(&script))
	if err != nil {
		return nil, err
	}

	if err := client.DeployScript(ctx, script.ScriptName, source); err != nil {
		s.history.Record(userID, models.ActionCreate, models.EntityRoute, "-",
			snapshotForRoute(&domain, &script, in.RoutePattern, ""), models.LogStatusError, err.Error())
		return nil, err
	}

	remote, err := client.CreateRoute(ctx, domain.ZoneID, in.RoutePattern, script.ScriptName)
	if err != nil {
		s.history.Record(userID, models.ActionCreate, models.EntityRoute, "-",
			snapshotForRoute(&domain, &script, in.RoutePattern, ""), models.LogStatusError, err.Error())
		return nil, err
	}

	route := models.WorkerRoute{
		UserID:       userID,
		DomainID:     domain.ID,
		ScriptName:   script.ScriptName,
		RoutePattern: in.RoutePattern,
		RouteID:      remote.ID,
		Status:       models.RouteStatusActive,
	}
	if err := s.db.Create(&route).Error; err != nil {
		return nil, err
	}

	s.history.Record(userID, models.ActionCreate, models.EntityRoute, route.UUID,
		snapshotForRoute(&domain, &script, route.RoutePattern, route.RouteID), models.LogStatusSuccess, "")
	return &route, nil
}

// Update changes the pattern and/or script binding. When neither changed,
// no remote call is made at all. When the route never obtained a remote id
// (a previously failed create), the remote route is created instead of
// updated. A changed script reference also redeploys the new script.
func (s *RouteService) Update(ctx context.Context, userID uint, uuid string, in UpdateRouteInput) (*models.WorkerRoute, error) {
	var route models.WorkerRoute
	if err := s.db.Where("uuid = ? AND user_id = ?", uuid, userID).First(&route).Error; err != nil {
		return nil, ErrNotFound
	}

	var domain models.Domain
	if err := s.db.First(&domain, route.DomainID).Error; err != nil {
		return nil, ErrNotFound
	}

	newName := route.ScriptName
	if in.ScriptName != "" {
		newName = in.ScriptName
	}
	var newScript models.WorkerScript
	if err := s.db.Where("user_id = ? AND script_name = ?", userID, newName).First(&newScript).Error; err != nil {
		return nil, ErrNotFound
	}

	oldPattern := route.RoutePattern
	oldScriptName := route.ScriptName
	if in.RoutePattern != "" {
		route.RoutePattern = in.RoutePattern
	}
	route.ScriptName = newName

	patternChanged := route.RoutePattern != oldPattern
	scriptChanged := route.ScriptName != oldScriptName

	if patternChanged || scriptChanged {
		user, err := s.user(userID)
		if err != nil {
			return nil, err
		}
		client, err := clientForUser(s.clients, user)
		if err != nil {
			return nil, err
		}

		if route.RouteID != "" {
			if err := client.UpdateRoute(ctx, domain.ZoneID, route.RouteID, route.RoutePattern, route.ScriptName); err != nil {
				s.history.Record(userID, models.ActionUpdate, models.EntityRoute, route.UUID,
					snapshotForRoute(&domain, &newScript, route.RoutePattern, route.RouteID), models.LogStatusError, err.Error())
				return nil, err
			}
		} else {
			remote, err := client.CreateRoute(ctx, domain.ZoneID, route.RoutePattern, route.ScriptName)
			if err != nil {
				s.history.Record(userID, models.ActionUpdate, models.EntityRoute, route.UUID,
					snapshotForRoute(&domain, &newScript, route.RoutePattern, ""), models.LogStatusError, err.Error())
				return nil, err
			}
			route.RouteID = remote.ID
		}

		if scriptChanged {
			source, err := worker.Generate(s.policy(&newScript))
			if err != nil {
				return nil, err
			}
			if err := client.DeployScript(ctx, newScript.ScriptName, source); err != nil {
				s.history.Record(userID, models.ActionUpdate, models.EntityRoute, route.UUID,
					snapshotForRoute(&domain, &newScript, route.RoutePattern, route.RouteID), models.LogStatusError, err.Error())
				return nil, err
			}
		}
	}

	if err := s.db.Save(&route).Error; err != nil {
		return nil, err
	}

	s.history.Record(userID, models.ActionUpdate, models.EntityRoute, route.UUID,
		snapshotForRoute(&domain, &newScript, route.RoutePattern, route.RouteID), models.LogStatusSuccess, "")
	return &route, nil
}

// Delete removes the remote route first when one exists, then the local
// record. A remote failure writes an error log entry and aborts the local
// delete so the next attempt can retry.
func (s *RouteService) Delete(ctx context.Context, userID uint, uuid string) error {
	var route models.WorkerRoute
	if err := s.db.Where("uuid = ? AND user_id = ?", uuid, userID).First(&route).Error; err != nil {
		return ErrNotFound
	}

	// Joined snapshot data; both lookups may come up empty.
	var domain *models.Domain
	var d models.Domain
	if err := s.db.First(&d, route.DomainID).Error; err == nil {
		domain = &d
	}
	var script *models.WorkerScript
	var sc models.WorkerScript
	if err := s.db.Where("user_id = ? AND script_name = ?", userID, route.ScriptName).First(&sc).Error; err == nil {
		script = &sc
	}

	if route.RouteID != "" && domain != nil {
		user, err := s.user(userID)
		if err != nil {
			return err
		}
		client, err := clientForUser(s.clients, user)
		if err != nil {
			return err
		}

		if err := client.DeleteRoute(ctx, domain.ZoneID, route.RouteID); err != nil {
			s.history.Record(userID, models.ActionDelete, models.EntityRoute, route.UUID,
				snapshotForRoute(domain, script, route.RoutePattern, route.RouteID), models.LogStatusError, err.Error())
			return err
		}
	}

	if err := s.db.Delete(&route).Error; err != nil {
		return err
	}

	s.history.Record(userID, models.ActionDelete, models.EntityRoute, route.UUID,
		snapshotForRoute(domain, script, route.RoutePattern, route.RouteID), models.LogStatusSuccess, "")
	return nil
}

func (s *RouteService) user(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *RouteService) policy(script *models.WorkerScript) worker.Policy {
	return worker.Policy{
		ScriptName:      script.ScriptName,
		Keywords:        script.Keywords,
		WhitelistPaths:  script.WhitelistPaths,
		EnableAlert:     script.EnableAlert,
		CallbackBaseURL: s.baseURL,
	}
}
