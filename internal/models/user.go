package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Every staff member defaults to contributor; the single admin
// is designated by configuration, not by this column, but the column is kept
// for display purposes.
const (
	RoleAdmin       = "admin"
	RoleContributor = "contributor"
)

// User represents a staff member authenticated through the OAuth provider.
// Email is the authorization key: the domain allowlist and all author checks
// match against it case-insensitively.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AuthID    string         `gorm:"uniqueIndex;not null" json:"auth_id"`
	AccountID string         `gorm:"index" json:"account_id"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Name      string         `json:"name"`
	AvatarURL string         `json:"avatar_url"`
	Role      string         `gorm:"default:contributor" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
