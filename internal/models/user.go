package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User owns scripts, domains and routes, and stores the Cloudflare
// credentials every remote call is made with.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	UUID         string `json:"uuid" gorm:"uniqueIndex"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	PasswordHash string `json:"-"` // Never serialize password hash
	Name         string `json:"name"`

	// Cloudflare API credentials, configured via the dashboard.
	CloudflareAPIToken string `json:"-"`
	AccountID          string `json:"-"`

	// TriggerAlertEnabled gates secondary notification logic for inbound
	// worker alerts. Alerts are stored regardless of this flag.
	TriggerAlertEnabled bool `json:"trigger_alert_enabled" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.UUID == "" {
		u.UUID = uuid.NewString()
	}
	return
}

// SetPassword hashes and sets the user's password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the provided password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// HasCloudflareCredentials reports whether both the API token and account ID
// are configured.
func (u *User) HasCloudflareCredentials() bool {
	return u.CloudflareAPIToken != "" && u.AccountID != ""
}
