package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Campaign statuses.
const (
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

// Campaign types. Random campaigns feed the automated generation pipeline;
// curated ones hold employee-composed posts.
const (
	CampaignTypeRandom  = "random"
	CampaignTypeCurated = "curated"
)

// CampaignSourceConfig controls where a random campaign draws inspiration
// from and how many drafts each generation run produces.
type CampaignSourceConfig struct {
	SourcePlatform string `json:"source_platform"`
	PostsLimit     int    `json:"posts_limit"`
	PostsPerRun    int    `json:"posts_per_run"`
}

// Campaign groups posts sharing a promotional theme or schedule.
// IsActive is the sole gate for accepting new posts.
type Campaign struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	Status       string         `gorm:"default:active" json:"status"`
	Type         string         `gorm:"default:curated;index" json:"type"`
	IsActive     bool           `gorm:"default:true;index" json:"is_active"`
	StartDate    *time.Time     `json:"start_date,omitempty"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
	SourceConfig datatypes.JSON `json:"source_config,omitempty"`
	// PostCount is not persisted; computed at query time
	PostCount int            `gorm:"->" json:"post_count"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ParseSourceConfig decodes the JSON source config, filling in the
// defaults used by the generation pipeline.
func (c *Campaign) ParseSourceConfig() CampaignSourceConfig {
	cfg := CampaignSourceConfig{
		SourcePlatform: ChannelLinkedIn,
		PostsLimit:     50,
		PostsPerRun:    5,
	}
	if len(c.SourceConfig) == 0 {
		return cfg
	}
	var parsed CampaignSourceConfig
	if err := json.Unmarshal(c.SourceConfig, &parsed); err != nil {
		return cfg
	}
	if parsed.SourcePlatform != "" {
		cfg.SourcePlatform = parsed.SourcePlatform
	}
	if parsed.PostsLimit > 0 {
		cfg.PostsLimit = parsed.PostsLimit
	}
	if parsed.PostsPerRun > 0 {
		cfg.PostsPerRun = parsed.PostsPerRun
	}
	return cfg
}
