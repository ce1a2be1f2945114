package models

import (
	"time"

	"gorm.io/datatypes"
)

// FollowerSnapshot is one daily per-platform follower-count sample.
// (Platform, SnapshotDate) is unique; re-running the snapshot job on the same
// day overwrites that day's row instead of appending a second one.
type FollowerSnapshot struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Platform      string         `gorm:"not null;uniqueIndex:idx_platform_date" json:"platform"`
	FollowerCount int            `gorm:"not null" json:"follower_count"`
	SnapshotDate  string         `gorm:"type:date;not null;uniqueIndex:idx_platform_date" json:"snapshot_date"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// LinkedInConnection stores the shared organization-level LinkedIn OAuth
// grant used for publishing and follower statistics.
type LinkedInConnection struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserEmail        string     `gorm:"uniqueIndex;not null" json:"user_email"`
	AccessToken      string     `gorm:"not null" json:"-"`
	RefreshToken     string     `json:"-"`
	ExpiresAt        time.Time  `json:"expires_at"`
	OrganizationID   string     `json:"organization_id"`
	OrganizationName string     `json:"organization_name"`
	Scope            string     `json:"scope"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastUsedAt       *time.Time `json:"last_used_at,omitempty"`
}
