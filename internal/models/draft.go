package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Draft lifecycle statuses.
const (
	DraftStatusDraft         = "draft"
	DraftStatusPendingReview = "pending_review"
	DraftStatusApproved      = "approved"
	DraftStatusRejected      = "rejected"
	DraftStatusScheduled     = "scheduled"
	DraftStatusPublished     = "published"
	DraftStatusFailed        = "failed"
)

// Draft routes: which room of the app owns the draft next.
const (
	DraftRouteDirect       = "direct"
	DraftRouteProofreading = "proofreading"
	DraftRouteScheduled    = "scheduled"
)

// Draft action types. Likes and reposts carry no content of their own;
// reposts, comments and likes need a target post URN.
const (
	ActionTypePost    = "post"
	ActionTypeComment = "comment"
	ActionTypeRepost  = "repost"
	ActionTypeLike    = "like"
)

// DefaultTimezone is applied when a schedule request omits one.
const DefaultTimezone = "America/New_York"

// DraftEvent is a lifecycle transition request.
type DraftEvent string

const (
	EventApprove    DraftEvent = "approve"
	EventReject     DraftEvent = "reject"
	EventSchedule   DraftEvent = "schedule"
	EventPublish    DraftEvent = "publish"
	EventFail       DraftEvent = "fail"
	EventReschedule DraftEvent = "reschedule"
)

// Transition is the pure lifecycle function: given the current status and an
// event it returns the next status, or a validation error when the event is
// not permitted from that status. Authorization (who may fire the event) is
// the caller's concern; this function only encodes the state graph:
//
//	draft → pending_review → {approved, rejected, scheduled} → published
//
// with failed as the publisher-error branch off scheduled.
func Transition(status string, event DraftEvent) (string, error) {
	switch event {
	case EventApprove:
		if status != DraftStatusPendingReview {
			return "", NewValidationError("Can only approve posts pending review")
		}
		return DraftStatusApproved, nil
	case EventReject:
		if status != DraftStatusPendingReview {
			return "", NewValidationError("Can only reject posts pending review")
		}
		return DraftStatusRejected, nil
	case EventSchedule:
		switch status {
		case DraftStatusDraft, DraftStatusPendingReview, DraftStatusApproved, DraftStatusScheduled, DraftStatusFailed:
			return DraftStatusScheduled, nil
		}
		return "", NewValidationError("Cannot schedule published or rejected posts")
	case EventPublish:
		if status != DraftStatusApproved && status != DraftStatusScheduled {
			return "", NewValidationError("Can only publish approved or scheduled posts")
		}
		return DraftStatusPublished, nil
	case EventFail:
		if status != DraftStatusScheduled {
			return "", NewValidationError("Only scheduled posts can fail publishing")
		}
		return DraftStatusFailed, nil
	case EventReschedule:
		if status != DraftStatusFailed {
			return "", NewValidationError("Only failed posts can be rescheduled")
		}
		return DraftStatusScheduled, nil
	}
	return "", NewValidationError("Unknown lifecycle event")
}

// PostDraft is a post awaiting or undergoing review before publication.
// Author identity is denormalized (id, email, name) because AI-generated
// drafts have no user row; authorization matches AuthorEmail
// case-insensitively against the acting user.
type PostDraft struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"type:text;not null" json:"content"`
	// CurrentContent holds the latest proofread revision; empty means the
	// original content is still current.
	CurrentContent string `gorm:"type:text" json:"current_content,omitempty"`
	Channel        string `gorm:"not null;index" json:"channel"`
	MediaURL       string `json:"media_url,omitempty"`
	MediaType      string `json:"media_type,omitempty"`

	AuthorID    *uint  `gorm:"index" json:"author_id,omitempty"`
	AuthorEmail string `gorm:"not null;index" json:"author_email"`
	AuthorName  string `json:"author_name"`

	Route  string `gorm:"default:direct;index" json:"route"`
	Status string `gorm:"default:draft;index" json:"status"`

	ScheduledFor      *time.Time `gorm:"index" json:"scheduled_for,omitempty"`
	ScheduledTimezone string     `json:"scheduled_timezone,omitempty"`

	ActionType    string `gorm:"default:post" json:"action_type"`
	TargetPostURN string `json:"target_post_urn,omitempty"`

	CampaignID         *uint          `gorm:"index" json:"campaign_id,omitempty"`
	InspirationPostID  *uint          `gorm:"index" json:"inspiration_post_id,omitempty"`
	Inspiration        *SocialPost    `gorm:"foreignKey:InspirationPostID" json:"inspiration,omitempty"`
	GenerationMetadata datatypes.JSON `json:"generation_metadata,omitempty"`

	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	ExternalID      string     `json:"external_id,omitempty"`
	ExternalURL     string     `json:"external_url,omitempty"`

	LastEditedBy *uint      `json:"last_edited_by,omitempty"`
	LastEditedAt *time.Time `json:"last_edited_at,omitempty"`

	EditHistory []PostEditHistory `gorm:"foreignKey:PostDraftID" json:"edit_history,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// EffectiveContent returns the content that should go out on the wire:
// the proofread revision when one exists, the original otherwise.
func (d *PostDraft) EffectiveContent() string {
	if d.CurrentContent != "" {
		return d.CurrentContent
	}
	return d.Content
}

// NeedsContent reports whether the draft's action type requires body text.
func NeedsContent(actionType string) bool {
	return actionType != ActionTypeLike && actionType != ActionTypeRepost
}

// NeedsTarget reports whether the draft's action type requires a target URN.
func NeedsTarget(actionType string) bool {
	switch actionType {
	case ActionTypeRepost, ActionTypeComment, ActionTypeLike:
		return true
	}
	return false
}

// PostEditHistory is the append-only edit trail of a draft, newest first.
type PostEditHistory struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PostDraftID     uint      `gorm:"not null;index" json:"post_draft_id"`
	EditorID        *uint     `json:"editor_id,omitempty"`
	EditorEmail     string    `json:"editor_email"`
	EditorName      string    `json:"editor_name"`
	PreviousContent string    `gorm:"type:text" json:"previous_content"`
	NewContent      string    `gorm:"type:text" json:"new_content"`
	EditSummary     string    `json:"edit_summary,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
