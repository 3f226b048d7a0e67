package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Alert statuses.
const (
	AlertStatusNew      = "new"
	AlertStatusRead     = "read"
	AlertStatusResolved = "resolved"
)

// Alert records a single blocked request reported by a deployed worker.
// UserID is resolved from the script's owner at ingestion time and stays
// nil when the script is unknown.
type Alert struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	UUID             string     `json:"uuid" gorm:"uniqueIndex"`
	UserID           *uint      `json:"user_id" gorm:"index"`
	ScriptName       string     `json:"script_name" gorm:"index"`
	FullPath         string     `json:"full_path"`
	Time             time.Time  `json:"time"`
	SourceIP         string     `json:"source_ip"`
	ResponseCode     int        `json:"response_code"`
	DetectedKeywords StringList `json:"detected_keywords" gorm:"type:text"`
	Status           string     `json:"status" gorm:"default:'new'"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (a *Alert) BeforeCreate(tx *gorm.DB) (err error) {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	return
}
