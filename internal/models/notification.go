package models

import "time"

// Notification types surfaced in the activity feed.
const (
	NotificationDraftApproved  = "draft_approved"
	NotificationDraftRejected  = "draft_rejected"
	NotificationDraftPublished = "draft_published"
	NotificationDraftFailed    = "draft_failed"
	NotificationPostGenerated  = "post_generated"
)

// Notification is a user-scoped feed entry. Rows are only ever appended and
// flipped to read; nothing deletes them.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserEmail string    `gorm:"not null;index" json:"user_email"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	LinkURL   string    `json:"link_url,omitempty"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
