package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Domain is a DNS zone already present in the user's Cloudflare account,
// adopted into the dashboard. It is never created or deleted remotely.
type Domain struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex"`
	UserID    uint      `json:"user_id" gorm:"index:idx_domains_user_zone,unique"`
	ZoneName  string    `json:"zone_name" gorm:"index:idx_domains_user_zone,unique"`
	ZoneID    string    `json:"zone_id"`
	Status    string    `json:"status"` // mirrors Cloudflare zone status
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Domain) BeforeCreate(tx *gorm.DB) (err error) {
	if d.UUID == "" {
		d.UUID = uuid.NewString()
	}
	return
}
