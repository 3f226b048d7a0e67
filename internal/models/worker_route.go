package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Route statuses.
const (
	RouteStatusActive  = "active"
	RouteStatusDeleted = "deleted"
	RouteStatusError   = "error"
)

// WorkerRoute binds a WorkerScript to a Domain at a URL pattern, realized on
// Cloudflare as a Worker Route. RouteID is assigned by Cloudflare on the
// first successful create and stays empty when that call failed. Pattern
// uniqueness is not enforced locally; Cloudflare is the source of truth for
// pattern conflicts.
type WorkerRoute struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UUID         string    `json:"uuid" gorm:"uniqueIndex"`
	UserID       uint      `json:"user_id" gorm:"index"`
	DomainID     uint      `json:"domain_id" gorm:"index"`
	ScriptName   string    `json:"script_name" gorm:"index"`
	RoutePattern string    `json:"route_pattern"`
	RouteID      string    `json:"route_id"`
	Status       string    `json:"status" gorm:"default:'active'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *WorkerRoute) BeforeCreate(tx *gorm.DB) (err error) {
	if r.UUID == "" {
		r.UUID = uuid.NewString()
	}
	return
}
