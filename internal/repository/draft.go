package repository

import (
	"context"
	"time"

	"amplify/internal/models"

	"gorm.io/gorm"
)

// DraftFilter narrows a draft listing. Zero values mean "no filter".
type DraftFilter struct {
	Route   string
	Status  string
	Channel string
	// StandaloneOnly excludes drafts that belong to a campaign, used by the
	// proofreading queue so pipeline output does not flood it.
	StandaloneOnly bool
}

// DraftRepository defines the interface for post draft data operations
type DraftRepository interface {
	Create(ctx context.Context, draft *models.PostDraft) error
	GetByID(ctx context.Context, id uint) (*models.PostDraft, error)
	List(ctx context.Context, filter DraftFilter) ([]*models.PostDraft, error)
	ListByCampaignIDs(ctx context.Context, campaignIDs []uint) ([]*models.PostDraft, error)
	Updates(ctx context.Context, id uint, updates map[string]interface{}) error
	UpdateStatusIf(ctx context.Context, id uint, fromStatuses []string, updates map[string]interface{}) (int64, error)
	AppendEditHistory(ctx context.Context, entry *models.PostEditHistory) error
	Delete(ctx context.Context, id uint) error
	DueScheduled(ctx context.Context, now time.Time) ([]*models.PostDraft, error)
}

type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Create(ctx context.Context, draft *models.PostDraft) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *draftRepository) GetByID(ctx context.Context, id uint) (*models.PostDraft, error) {
	var draft models.PostDraft
	err := r.db.WithContext(ctx).
		Preload("Inspiration").
		Preload("EditHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&draft, id).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepository) List(ctx context.Context, filter DraftFilter) ([]*models.PostDraft, error) {
	var drafts []*models.PostDraft
	q := r.db.WithContext(ctx).
		Preload("Inspiration").
		Preload("EditHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})

	if filter.Route != "" {
		q = q.Where("route = ?", filter.Route)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Channel != "" {
		q = q.Where("channel = ?", filter.Channel)
	}
	if filter.StandaloneOnly {
		q = q.Where("campaign_id IS NULL")
	}

	if err := q.Order("created_at DESC").Find(&drafts).Error; err != nil {
		return nil, err
	}
	return drafts, nil
}

func (r *draftRepository) ListByCampaignIDs(ctx context.Context, campaignIDs []uint) ([]*models.PostDraft, error) {
	if len(campaignIDs) == 0 {
		return nil, nil
	}
	var drafts []*models.PostDraft
	err := r.db.WithContext(ctx).
		Preload("Inspiration").
		Preload("EditHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("campaign_id IN ?", campaignIDs).
		Order("created_at DESC").
		Find(&drafts).Error
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

func (r *draftRepository) Updates(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.PostDraft{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateStatusIf applies updates with a status guard in the WHERE clause, so
// concurrent transitions race on a single conditional UPDATE instead of a
// read-then-write. The returned row count is 0 when the guard did not match.
func (r *draftRepository) UpdateStatusIf(ctx context.Context, id uint, fromStatuses []string, updates map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PostDraft{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *draftRepository) AppendEditHistory(ctx context.Context, entry *models.PostEditHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *draftRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PostDraft{}, id).Error
}

// DueScheduled returns drafts the scheduler should publish now.
func (r *draftRepository) DueScheduled(ctx context.Context, now time.Time) ([]*models.PostDraft, error) {
	var drafts []*models.PostDraft
	err := r.db.WithContext(ctx).
		Where("status = ? AND route = ? AND scheduled_for <= ?",
			models.DraftStatusScheduled, models.DraftRouteScheduled, now).
		Order("scheduled_for ASC").
		Find(&drafts).Error
	if err != nil {
		return nil, err
	}
	return drafts, nil
}
