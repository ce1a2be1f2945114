// Package service provides application business logic (drafts, posts, campaigns, generation).
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"amplify/internal/middleware"
	"amplify/internal/models"
	"amplify/internal/notifications"
	"amplify/internal/publish"
	"amplify/internal/repository"

	"gorm.io/gorm"
)

// Actor identifies the staff member performing an operation.
type Actor struct {
	ID    *uint
	Email string
	Name  string
}

// SameAuthor reports whether the actor is the draft's author. Emails compare
// case-insensitively.
func (a Actor) SameAuthor(d *models.PostDraft) bool {
	return strings.EqualFold(a.Email, d.AuthorEmail)
}

// DraftService owns the draft lifecycle.
type DraftService struct {
	drafts   repository.DraftRepository
	registry *publish.Registry
	notifier *notifications.Notifier
}

// CreateDraftInput carries a draft creation request.
type CreateDraftInput struct {
	Content           string
	Channel           string
	MediaURL          string
	MediaType         string
	Route             string
	ActionType        string
	TargetPostURN     string
	ScheduledFor      *time.Time
	ScheduledTimezone string
}

// UpdateDraftInput carries a draft edit. Nil pointers mean "leave unchanged".
type UpdateDraftInput struct {
	Content           *string
	MediaURL          *string
	MediaType         *string
	ScheduledFor      *time.Time
	ScheduledTimezone *string
	EditSummary       string
}

// NewDraftService returns a new DraftService.
func NewDraftService(drafts repository.DraftRepository, registry *publish.Registry, notifier *notifications.Notifier) *DraftService {
	return &DraftService{drafts: drafts, registry: registry, notifier: notifier}
}

// routeStatus maps a creation route to the draft's starting status.
func routeStatus(route string) (string, error) {
	switch route {
	case models.DraftRouteDirect:
		return models.DraftStatusApproved, nil
	case models.DraftRouteProofreading:
		return models.DraftStatusPendingReview, nil
	case models.DraftRouteScheduled:
		return models.DraftStatusScheduled, nil
	}
	return "", models.NewValidationError("Invalid route")
}

// Create validates and stores a new draft.
func (s *DraftService) Create(ctx context.Context, actor Actor, in CreateDraftInput) (*models.PostDraft, error) {
	if in.Channel == "" {
		return nil, models.NewValidationError("Channel is required")
	}
	if !models.ValidChannel(in.Channel) {
		return nil, models.NewValidationError("Invalid channel")
	}
	actionType := in.ActionType
	if actionType == "" {
		actionType = models.ActionTypePost
	}
	if models.NeedsContent(actionType) && strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if models.NeedsTarget(actionType) && strings.TrimSpace(in.TargetPostURN) == "" {
		return nil, models.NewValidationError("Target post URL is required for this action")
	}

	route := in.Route
	if route == "" {
		route = models.DraftRouteDirect
	}
	status, err := routeStatus(route)
	if err != nil {
		return nil, err
	}

	draft := &models.PostDraft{
		Content:       strings.TrimSpace(in.Content),
		Channel:       in.Channel,
		MediaURL:      in.MediaURL,
		MediaType:     in.MediaType,
		AuthorID:      actor.ID,
		AuthorEmail:   actor.Email,
		AuthorName:    actor.Name,
		Route:         route,
		Status:        status,
		ActionType:    actionType,
		TargetPostURN: strings.TrimSpace(in.TargetPostURN),
	}

	if route == models.DraftRouteScheduled {
		if in.ScheduledFor == nil {
			return nil, models.NewValidationError("Scheduled time is required for scheduled posts")
		}
		// Past timestamps are accepted; the scheduler publishes them on
		// its next tick.
		draft.ScheduledFor = in.ScheduledFor
		draft.ScheduledTimezone = in.ScheduledTimezone
		if draft.ScheduledTimezone == "" {
			draft.ScheduledTimezone = models.DefaultTimezone
		}
	}

	if draft.Status == models.DraftStatusApproved {
		now := time.Now()
		draft.ApprovedAt = &now
	}

	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, models.NewInternalError(err)
	}
	return draft, nil
}

// Get loads one draft with inspiration and edit history.
func (s *DraftService) Get(ctx context.Context, id uint) (*models.PostDraft, error) {
	draft, err := s.drafts.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Draft not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return draft, nil
}

// List returns drafts matching the filter. The proofreading queue only shows
// standalone drafts; campaign drafts surface through the pipeline feed.
func (s *DraftService) List(ctx context.Context, filter repository.DraftFilter) ([]*models.PostDraft, error) {
	if filter.Route == models.DraftRouteProofreading {
		filter.StandaloneOnly = true
	}
	drafts, err := s.drafts.List(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return drafts, nil
}

// Update edits a draft's content, media or schedule. Content changes append
// to the edit history; editing a failed draft's schedule resets it to
// scheduled.
func (s *DraftService) Update(ctx context.Context, actor Actor, id uint, in UpdateDraftInput) (*models.PostDraft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status == models.DraftStatusPublished || draft.Status == models.DraftStatusRejected {
		return nil, models.NewValidationError("Cannot edit published or rejected posts")
	}

	updates := map[string]interface{}{}

	if in.Content != nil && *in.Content != draft.EffectiveContent() {
		now := time.Now()
		entry := &models.PostEditHistory{
			PostDraftID:     draft.ID,
			EditorID:        actor.ID,
			EditorEmail:     actor.Email,
			EditorName:      actor.Name,
			PreviousContent: draft.EffectiveContent(),
			NewContent:      *in.Content,
			EditSummary:     in.EditSummary,
		}
		if err := s.drafts.AppendEditHistory(ctx, entry); err != nil {
			return nil, models.NewInternalError(err)
		}
		updates["current_content"] = *in.Content
		updates["last_edited_by"] = actor.ID
		updates["last_edited_at"] = now
	}

	if in.MediaURL != nil {
		updates["media_url"] = *in.MediaURL
	}
	if in.MediaType != nil {
		updates["media_type"] = *in.MediaType
	}
	if in.ScheduledFor != nil {
		updates["scheduled_for"] = *in.ScheduledFor
		tz := models.DefaultTimezone
		if in.ScheduledTimezone != nil && *in.ScheduledTimezone != "" {
			tz = *in.ScheduledTimezone
		}
		updates["scheduled_timezone"] = tz

		// Rescheduling a failed draft puts it back in the queue.
		if draft.Status == models.DraftStatusFailed {
			next, terr := models.Transition(draft.Status, models.EventReschedule)
			if terr != nil {
				return nil, terr
			}
			updates["status"] = next
			updates["rejection_reason"] = ""
		}
	}

	if len(updates) == 0 {
		return nil, models.NewValidationError("No changes to apply")
	}

	if err := s.drafts.Updates(ctx, draft.ID, updates); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.Get(ctx, draft.ID)
}

// Delete removes a draft. Only the author may delete, and published drafts
// are immutable history.
func (s *DraftService) Delete(ctx context.Context, actor Actor, id uint) error {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.SameAuthor(draft) {
		return models.NewForbiddenError("Only the author can delete this draft")
	}
	if draft.Status == models.DraftStatusPublished {
		return models.NewValidationError("Cannot delete published posts")
	}
	if err := s.drafts.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Approve moves a pending draft to approved. Review is author-bound: the
// person who wrote the post signs off on the proofread result.
func (s *DraftService) Approve(ctx context.Context, actor Actor, id uint) (*models.PostDraft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.SameAuthor(draft) {
		return nil, models.NewForbiddenError("Only the original author can approve this post")
	}
	if _, err := models.Transition(draft.Status, models.EventApprove); err != nil {
		return nil, err
	}

	now := time.Now()
	rows, err := s.drafts.UpdateStatusIf(ctx, id,
		[]string{models.DraftStatusPendingReview},
		map[string]interface{}{
			"status":      models.DraftStatusApproved,
			"approved_at": now,
		})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if rows == 0 {
		return nil, models.NewValidationError("Can only approve posts pending review")
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if nerr := s.notifier.DraftApproved(ctx, updated, actor.Email); nerr != nil {
		middleware.Logger.WarnContext(ctx, "approval notification failed", "error", nerr.Error())
	}
	return updated, nil
}

// Reject moves a pending draft to rejected with a reason.
func (s *DraftService) Reject(ctx context.Context, actor Actor, id uint, reason string) (*models.PostDraft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.SameAuthor(draft) {
		return nil, models.NewForbiddenError("Only the original author can reject this post")
	}
	if _, err := models.Transition(draft.Status, models.EventReject); err != nil {
		return nil, err
	}

	now := time.Now()
	rows, err := s.drafts.UpdateStatusIf(ctx, id,
		[]string{models.DraftStatusPendingReview},
		map[string]interface{}{
			"status":           models.DraftStatusRejected,
			"rejected_at":      now,
			"rejection_reason": reason,
		})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if rows == 0 {
		return nil, models.NewValidationError("Can only reject posts pending review")
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if nerr := s.notifier.DraftRejected(ctx, updated, reason); nerr != nil {
		middleware.Logger.WarnContext(ctx, "rejection notification failed", "error", nerr.Error())
	}
	return updated, nil
}

// Schedule queues a draft for timed publication.
func (s *DraftService) Schedule(ctx context.Context, id uint, when time.Time, timezone string) (*models.PostDraft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := models.Transition(draft.Status, models.EventSchedule); err != nil {
		return nil, err
	}
	if timezone == "" {
		timezone = models.DefaultTimezone
	}

	rows, err := s.drafts.UpdateStatusIf(ctx, id,
		[]string{
			models.DraftStatusDraft, models.DraftStatusPendingReview,
			models.DraftStatusApproved, models.DraftStatusScheduled,
			models.DraftStatusFailed,
		},
		map[string]interface{}{
			"status":             models.DraftStatusScheduled,
			"route":              models.DraftRouteScheduled,
			"scheduled_for":      when,
			"scheduled_timezone": timezone,
		})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if rows == 0 {
		return nil, models.NewValidationError("Cannot schedule published or rejected posts")
	}
	return s.Get(ctx, id)
}

// Publish sends a draft out on its channel now.
func (s *DraftService) Publish(ctx context.Context, id uint) (*models.PostDraft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := models.Transition(draft.Status, models.EventPublish); err != nil {
		return nil, err
	}

	publisher, err := s.registry.For(draft.Channel)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	result, err := publisher.Publish(ctx, draft)
	if err != nil {
		middleware.PublishAttempts.WithLabelValues(draft.Channel, "error").Inc()
		return nil, models.NewInternalError(err)
	}
	middleware.PublishAttempts.WithLabelValues(draft.Channel, "ok").Inc()

	now := time.Now()
	rows, err := s.drafts.UpdateStatusIf(ctx, id,
		[]string{models.DraftStatusApproved, models.DraftStatusScheduled},
		map[string]interface{}{
			"status":       models.DraftStatusPublished,
			"published_at": now,
			"external_id":  result.ExternalID,
			"external_url": result.ExternalURL,
		})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if rows == 0 {
		// Lost the race after the network call went out. Record it
		// anyway so the external post is not orphaned.
		middleware.Logger.WarnContext(ctx, "publish transition raced",
			"draft_id", id, "external_id", result.ExternalID)
		return nil, models.NewValidationError("Can only publish approved or scheduled posts")
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if nerr := s.notifier.DraftPublished(ctx, updated); nerr != nil {
		middleware.Logger.WarnContext(ctx, "publish notification failed", "error", nerr.Error())
	}
	return updated, nil
}

// PublishDueResult summarizes one scheduler tick.
type PublishDueResult struct {
	Published []uint `json:"published"`
	Failed    []uint `json:"failed"`
}

// PublishDue publishes everything whose scheduled time has passed. Failures
// mark the draft failed and keep going; one bad post must not block the
// rest of the queue.
func (s *DraftService) PublishDue(ctx context.Context, now time.Time) (*PublishDueResult, error) {
	due, err := s.drafts.DueScheduled(ctx, now)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	result := &PublishDueResult{Published: []uint{}, Failed: []uint{}}
	for _, draft := range due {
		if _, err := s.Publish(ctx, draft.ID); err != nil {
			result.Failed = append(result.Failed, draft.ID)
			s.markFailed(ctx, draft, err)
			continue
		}
		result.Published = append(result.Published, draft.ID)
	}
	return result, nil
}

func (s *DraftService) markFailed(ctx context.Context, draft *models.PostDraft, cause error) {
	rows, err := s.drafts.UpdateStatusIf(ctx, draft.ID,
		[]string{models.DraftStatusScheduled},
		map[string]interface{}{
			"status":           models.DraftStatusFailed,
			"rejection_reason": cause.Error(),
		})
	if err != nil || rows == 0 {
		middleware.Logger.ErrorContext(ctx, "could not mark draft failed",
			"draft_id", draft.ID, "cause", cause.Error())
		return
	}
	if nerr := s.notifier.DraftFailed(ctx, draft, cause.Error()); nerr != nil {
		middleware.Logger.WarnContext(ctx, "failure notification failed", "error", nerr.Error())
	}
}
