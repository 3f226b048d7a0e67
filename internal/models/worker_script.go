package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkerScript is a named content-filtering policy. ScriptName doubles as
// the Cloudflare Worker script identifier, so it is unique across the whole
// system, not just per user.
type WorkerScript struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UUID           string     `json:"uuid" gorm:"uniqueIndex"`
	UserID         uint       `json:"user_id" gorm:"index"`
	ScriptName     string     `json:"script_name" gorm:"uniqueIndex"`
	Keywords       StringList `json:"keywords" gorm:"type:text"`
	WhitelistPaths StringList `json:"whitelist_paths" gorm:"type:text"`
	EnableAlert    bool       `json:"enable_alert" gorm:"default:false"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (s *WorkerScript) BeforeCreate(tx *gorm.DB) (err error) {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	return
}
