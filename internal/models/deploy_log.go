package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Deploy log action types.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Deploy log entity types.
const (
	EntityDomain = "domain"
	EntityScript = "script"
	EntityRoute  = "route"
)

// Deploy log statuses.
const (
	LogStatusSuccess = "success"
	LogStatusError   = "error"
)

// DomainSnapshot is the denormalized domain state captured in a log entry.
type DomainSnapshot struct {
	ZoneName string `json:"zone_name"`
	ZoneID   string `json:"zone_id"`
	Status   string `json:"status"`
}

// ScriptSnapshot is the denormalized script policy captured in a log entry.
type ScriptSnapshot struct {
	ScriptName     string   `json:"script_name"`
	Keywords       []string `json:"keywords"`
	WhitelistPaths []string `json:"whitelist_paths"`
	EnableAlert    bool     `json:"enable_alert"`
}

// RouteSnapshot captures a route action together with the joined domain and
// script state at the time of the action.
type RouteSnapshot struct {
	Domain       *DomainSnapshot `json:"domain,omitempty"`
	Script       *ScriptSnapshot `json:"script,omitempty"`
	RoutePattern string          `json:"route_pattern"`
	RouteID      string          `json:"route_id,omitempty"`
}

// Snapshot is a tagged union keyed by the log entry's entity type: exactly
// one variant is set.
type Snapshot struct {
	Domain *DomainSnapshot `json:"domain,omitempty"`
	Script *ScriptSnapshot `json:"script,omitempty"`
	Route  *RouteSnapshot  `json:"route,omitempty"`
}

// Value implements driver.Valuer, storing the snapshot as JSON.
func (s Snapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *Snapshot) Scan(value interface{}) error {
	if value == nil {
		*s = Snapshot{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan snapshot: unsupported type %T", value)
	}

	if len(raw) == 0 {
		*s = Snapshot{}
		return nil
	}

	return json.Unmarshal(raw, s)
}

// DeployLog is an immutable audit record of one orchestration attempt.
// Entries are append-only and written on a best-effort basis: a logging
// failure never invalidates the primary action's result.
type DeployLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"index"`
	ActionType   string    `json:"action_type"` // create, update, delete
	EntityType   string    `json:"entity_type"` // domain, script, route
	EntityID     string    `json:"entity_id"`
	Snapshot     Snapshot  `json:"snapshot" gorm:"type:text"`
	Status       string    `json:"status"` // success, error
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
