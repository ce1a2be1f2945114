package models

import (
	"time"

	"gorm.io/gorm"
)

// Channels a post can target.
const (
	ChannelLinkedIn  = "linkedin"
	ChannelX         = "x"
	ChannelInstagram = "instagram"
)

// Source types. Immutable after creation: they record provenance, and the
// delete guard depends on them.
const (
	SourceTypeAIGenerated      = "ai_generated"
	SourceTypeEmployeeComposed = "employee_composed"
)

// ValidChannel reports whether ch names a supported channel.
func ValidChannel(ch string) bool {
	switch ch {
	case ChannelLinkedIn, ChannelX, ChannelInstagram:
		return true
	}
	return false
}

// Post is an employee-voice post bound to a campaign. Employee-composed posts
// enter review immediately; only their author may delete them.
type Post struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CampaignID uint           `gorm:"not null;index" json:"campaign_id"`
	AuthorID   uint           `gorm:"not null;index" json:"author_id"`
	Author     *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Channel    string         `json:"channel"`
	Status     string         `gorm:"default:pending_review" json:"status"`
	SourceType string         `gorm:"not null" json:"source_type"`
	Likes      int            `json:"likes"`
	Comments   int            `json:"comments"`
	Upvotes    int            `json:"upvotes"`
	Downvotes  int            `json:"downvotes"`
	ImageURL   string         `json:"image_url,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// SocialPost is an archived post that went out on a real channel. The
// generation pipeline samples these as inspiration, and analytics summarizes
// them by external id.
type SocialPost struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Channel     string    `gorm:"index" json:"channel"`
	Content     string    `gorm:"type:text" json:"content"`
	ExternalID  string    `gorm:"index" json:"external_id"`
	ExternalURL string    `json:"external_url"`
	AuthorName  string    `json:"author_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
