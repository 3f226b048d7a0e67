package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/slotflare/slotflare/backend/internal/logger"
	"github.com/slotflare/slotflare/backend/internal/models"
	"github.com/slotflare/slotflare/backend/internal/worker"
)

// ScriptService orchestrates the filter-script lifecycle: local policy
// records plus the matching Worker scripts on Cloudflare.
type ScriptService struct {
	db      *gorm.DB
	history *HistoryService
	clients ClientFactory
	baseURL string
}

func NewScriptService(db *gorm.DB, history *HistoryService, clients ClientFactory, baseURL string) *ScriptService {
	return &ScriptService{db: db, history: history, clients: clients, baseURL: baseURL}
}

// CreateScriptInput carries the fields for a new filter script.
type CreateScriptInput struct {
	ScriptName     string   `json:"script_name"`
	Keywords       []string `json:"keywords"`
	WhitelistPaths []string `json:"whitelist_paths"`
	EnableAlert    bool     `json:"enable_alert"`
}

// UpdateScriptInput carries partial updates; nil fields keep current values.
type UpdateScriptInput struct {
	ScriptName     *string   `json:"script_name"`
	Keywords       *[]string `json:"keywords"`
	WhitelistPaths *[]string `json:"whitelist_paths"`
	EnableAlert    *bool     `json:"enable_alert"`
}

// List returns the user's scripts, newest first.
func (s *ScriptService) List(userID uint) ([]models.WorkerScript, error) {
	var scripts []models.WorkerScript
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&scripts).Error
	return scripts, err
}

// GetByName returns the user's script with the given script name.
func (s *ScriptService) GetByName(userID uint, scriptName string) (*models.WorkerScript, error) {
	var script models.WorkerScript
	if err := s.db.Where("user_id = ? AND script_name = ?", userID, scriptName).First(&script).Error; err != nil {
		return nil, ErrNotFound
	}
	return &script, nil
}

// Create validates and persists a new script, then deploys it to Cloudflare.
// A failed remote deploy is recorded in the deploy log but does not roll
// back the local record; the caller gets the local representation either way
// and the next update re-deploys.
func (s *ScriptService) Create(ctx context.Context, userID uint, in CreateScriptInput) (*models.WorkerScript, error) {
	if in.ScriptName == "" {
		return nil, validationf("script_name is required")
	}
	if len(in.Keywords) == 0 {
		return nil, validationf("keywords must not be empty")
	}

	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	client, err := clientForUser(s.clients, user)
	if err != nil {
		return nil, err
	}

	// Script names are the deploy key on Cloudflare, so uniqueness is
	// global, not per user.
	var count int64
	if err := s.db.Model(&models.WorkerScript{}).Where("script_name = ?", in.ScriptName).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{
			Msg:        "Script name \"" + in.ScriptName + "\" is already in use",
			EntityName: in.ScriptName,
		}
	}

	script := models.WorkerScript{
		UserID:         userID,
		ScriptName:     in.ScriptName,
		Keywords:       in.Keywords,
		WhitelistPaths: in.WhitelistPaths,
		EnableAlert:    in.EnableAlert,
	}
	if err := s.db.Create(&script).Error; err != nil {
		return nil, err
	}

	source, err := worker.Generate(s.policy(&script))
	if err != nil {
		return nil, err
	}

	if err := client.DeployScript(ctx, script.ScriptName, source); err != nil {
		logger.WithFields(map[string]interface{}{"script": script.ScriptName}).
			WithError(err).Error("script created locally but remote deploy failed")
		s.history.Record(userID, models.ActionCreate, models.EntityScript, script.UUID,
			snapshotForScript(&script), models.LogStatusError, err.Error())
		return &script, nil
	}

	s.history.Record(userID, models.ActionCreate, models.EntityScript, script.UUID,
		snapshotForScript(&script), models.LogStatusSuccess, "")
	return &script, nil
}

// Update applies field changes, regenerates the worker source from the new
// state, and redeploys. A rename deletes the old remote script before
// deploying under the new name.
func (s *ScriptService) Update(ctx context.Context, userID uint, uuid string, in UpdateScriptInput) (*models.WorkerScript, error) {
	var script models.WorkerScript
	if err := s.db.Where("uuid = ? AND user_id = ?", uuid, userID).First(&script).Error; err != nil {
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

	oldName := script.ScriptName
	if in.ScriptName != nil && *in.ScriptName != "" {
		script.ScriptName = *in.ScriptName
	}
	if in.Keywords != nil {
		if len(*in.Keywords) == 0 {
			return nil, validationf("keywords must not be empty")
		}
		script.Keywords = *in.Keywords
	}
	if in.WhitelistPaths != nil {
		script.WhitelistPaths = *in.WhitelistPaths
	}
	if in.EnableAlert != nil {
		script.EnableAlert = *in.EnableAlert
	}

	// A rename must honor the same global uniqueness as create, and the
	// check has to happen before any remote mutation: deploying under a
	// taken name would overwrite another user's live Worker.
	if script.ScriptName != oldName {
		var count int64
		if err := s.db.Model(&models.WorkerScript{}).Where("script_name = ?", script.ScriptName).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, &ConflictError{
				Msg:        "Script name \"" + script.ScriptName + "\" is already in use",
				EntityName: script.ScriptName,
			}
		}
	}

	source, err := worker.Generate(s.policy(&script))
	if err != nil {
		return nil, err
	}

	if script.ScriptName != oldName {
		if err := client.DeleteScript(ctx, oldName); err != nil {
			s.history.Record(userID, models.ActionUpdate, models.EntityScript, script.UUID,
				snapshotForScript(&script), models.LogStatusError, err.Error())
			return nil, err
		}
	}
	if err := client.DeployScript(ctx, script.ScriptName, source); err != nil {
		s.history.Record(userID, models.ActionUpdate, models.EntityScript, script.UUID,
			snapshotForScript(&script), models.LogStatusError, err.Error())
		return nil, err
	}

	if err := s.db.Save(&script).Error; err != nil {
		return nil, err
	}

	s.history.Record(userID, models.ActionUpdate, models.EntityScript, script.UUID,
		snapshotForScript(&script), models.LogStatusSuccess, "")
	return &script, nil
}

// Delete refuses while any non-deleted route references the script, then
// removes the remote script before the local record.
func (s *ScriptService) Delete(ctx context.Context, userID uint, uuid string) error {
	var script models.WorkerScript
	if err := s.db.Where("uuid = ? AND user_id = ?", uuid, userID).First(&script).Error; err != nil {
		return ErrNotFound
	}

	var routesCount int64
	if err := s.db.Model(&models.WorkerRoute{}).
		Where("user_id = ? AND script_name = ? AND status <> ?", userID, script.ScriptName, models.RouteStatusDeleted).
		Count(&routesCount).Error; err != nil {
		return err
	}
	if routesCount > 0 {
		return &ConflictError{
			Msg: "Cannot delete script \"" + script.ScriptName + "\": it is used by active routes. " +
				"Delete all routes using this script first.",
			EntityName:  script.ScriptName,
			RoutesCount: routesCount,
		}
	}

	user, err := s.user(userID)
	if err != nil {
		return err
	}
	client, err := clientForUser(s.clients, user)
	if err != nil {
		return err
	}

	if err := client.DeleteScript(ctx, script.ScriptName); err != nil {
		s.history.Record(userID, models.ActionDelete, models.EntityScript, script.UUID,
			snapshotForScript(&script), models.LogStatusError, err.Error())
		return err
	}

	if err := s.db.Delete(&script).Error; err != nil {
		return err
	}

	s.history.Record(userID, models.ActionDelete, models.EntityScript, script.UUID,
		snapshotForScript(&script), models.LogStatusSuccess, "")
	return nil
}

func (s *ScriptService) user(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *ScriptService) policy(script *models.WorkerScript) worker.Policy {
	return worker.Policy{
		ScriptName:      script.ScriptName,
		Keywords:        script.Keywords,
		WhitelistPaths:  script.WhitelistPaths,
		EnableAlert:     script.EnableAlert,
		CallbackBaseURL: s.baseURL,
	}
}
