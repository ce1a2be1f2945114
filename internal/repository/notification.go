package repository

import (
	"context"

	"amplify/internal/cache"
	"amplify/internal/models"

	"gorm.io/gorm"
)

// feedLimit caps how many notifications the feed returns per request.
const feedLimit = 50

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListRecent(ctx context.Context, userEmail string) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userEmail string) (int64, error)
	MarkRead(ctx context.Context, userEmail string, ids []uint) error
	MarkAllRead(ctx context.Context, userEmail string) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	err := r.db.WithContext(ctx).Create(notification).Error
	if err == nil {
		cache.InvalidateUnreadCount(ctx, notification.UserEmail)
	}
	return err
}

func (r *notificationRepository) ListRecent(ctx context.Context, userEmail string) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Where("user_email = ?", userEmail).
		Order("created_at DESC").
		Limit(feedLimit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountUnread counts unread rows directly. The count is independent of the
// feed page, so users with more than a page of unread items still see the
// true number.
func (r *notificationRepository) CountUnread(ctx context.Context, userEmail string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_email = ? AND is_read = ?", userEmail, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips the given notifications to read, scoped to the owner so one
// user cannot acknowledge another's feed.
func (r *notificationRepository) MarkRead(ctx context.Context, userEmail string, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_email = ? AND id IN ?", userEmail, ids).
		Update("is_read", true).Error
	if err == nil {
		cache.InvalidateUnreadCount(ctx, userEmail)
	}
	return err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userEmail string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_email = ? AND is_read = ?", userEmail, false).
		Update("is_read", true).Error
	if err == nil {
		cache.InvalidateUnreadCount(ctx, userEmail)
	}
	return err
}
