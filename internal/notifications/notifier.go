// Package notifications appends activity feed entries and fans them out
// over Redis pub/sub for any listening frontends.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"amplify/internal/middleware"
	"amplify/internal/models"
	"amplify/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Notifier persists notifications and publishes them to the owner's channel.
type Notifier struct {
	repo repository.NotificationRepository
	rdb  *redis.Client
}

// NewNotifier creates a notifier. rdb may be nil; persistence still works
// and only the live fan-out is skipped.
func NewNotifier(repo repository.NotificationRepository, rdb *redis.Client) *Notifier {
	return &Notifier{repo: repo, rdb: rdb}
}

// Notify writes the feed entry and publishes it. The database row is the
// source of truth; a pub/sub failure is logged and swallowed.
func (n *Notifier) Notify(ctx context.Context, notification *models.Notification) error {
	if err := n.repo.Create(ctx, notification); err != nil {
		return err
	}

	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return nil
	}
	channel := fmt.Sprintf("notifications:user:%s", notification.UserEmail)
	if err := n.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "notification fan-out failed",
			"channel", channel, "error", err.Error())
	}
	return nil
}

// DraftApproved notifies the draft author of an approval.
func (n *Notifier) DraftApproved(ctx context.Context, draft *models.PostDraft, approver string) error {
	return n.Notify(ctx, &models.Notification{
		UserEmail: draft.AuthorEmail,
		Type:      models.NotificationDraftApproved,
		Title:     "Post approved",
		Message:   fmt.Sprintf("Your %s post was approved by %s", draft.Channel, approver),
		LinkURL:   fmt.Sprintf("/review/%d", draft.ID),
	})
}

// DraftRejected notifies the draft author of a rejection with the reason.
func (n *Notifier) DraftRejected(ctx context.Context, draft *models.PostDraft, reason string) error {
	msg := fmt.Sprintf("Your %s post was rejected", draft.Channel)
	if reason != "" {
		msg += ": " + reason
	}
	return n.Notify(ctx, &models.Notification{
		UserEmail: draft.AuthorEmail,
		Type:      models.NotificationDraftRejected,
		Title:     "Post rejected",
		Message:   msg,
		LinkURL:   fmt.Sprintf("/review/%d", draft.ID),
	})
}

// DraftPublished notifies the draft author their post went live.
func (n *Notifier) DraftPublished(ctx context.Context, draft *models.PostDraft) error {
	return n.Notify(ctx, &models.Notification{
		UserEmail: draft.AuthorEmail,
		Type:      models.NotificationDraftPublished,
		Title:     "Post published",
		Message:   fmt.Sprintf("Your %s post is live", draft.Channel),
		LinkURL:   draft.ExternalURL,
	})
}

// DraftFailed notifies the draft author of a publish failure.
func (n *Notifier) DraftFailed(ctx context.Context, draft *models.PostDraft, cause string) error {
	return n.Notify(ctx, &models.Notification{
		UserEmail: draft.AuthorEmail,
		Type:      models.NotificationDraftFailed,
		Title:     "Publishing failed",
		Message:   fmt.Sprintf("Your scheduled %s post failed to publish: %s", draft.Channel, cause),
		LinkURL:   fmt.Sprintf("/review/%d", draft.ID),
	})
}
