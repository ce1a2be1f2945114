package repository

import (
	"context"

	"amplify/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for campaign post and archive data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error

	GetSocialPostByID(ctx context.Context, id uint) (*models.SocialPost, error)
	CreateSocialPost(ctx context.Context, post *models.SocialPost) error
	DeleteSocialPost(ctx context.Context, id uint) error
	RandomInspiration(ctx context.Context, channel string, poolLimit, sampleSize int) ([]*models.SocialPost, error)
	SummarizeArchive(ctx context.Context, since *string) (*ArchiveSummary, error)
}

// ArchiveSummary aggregates published archive posts for the analytics view.
type ArchiveSummary struct {
	TotalPosts int64                 `json:"total_posts"`
	ByChannel  []ArchiveChannelCount `json:"by_channel"`
	Recent     []*models.SocialPost  `json:"recent"`
}

// ArchiveChannelCount is a per-channel post count.
type ArchiveChannelCount struct {
	Channel string `json:"channel"`
	Count   int64  `json:"count"`
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("campaign_id = ?", campaignID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

func (r *postRepository) GetSocialPostByID(ctx context.Context, id uint) (*models.SocialPost, error) {
	var post models.SocialPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) CreateSocialPost(ctx context.Context, post *models.SocialPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) DeleteSocialPost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.SocialPost{}, id).Error
}

// RandomInspiration samples the archive for the generation pipeline: it takes
// the poolLimit most recent posts on the channel and shuffles sampleSize of
// them out. RANDOM() is fine at this pool size.
func (r *postRepository) RandomInspiration(ctx context.Context, channel string, poolLimit, sampleSize int) ([]*models.SocialPost, error) {
	var posts []*models.SocialPost
	sub := r.db.WithContext(ctx).
		Model(&models.SocialPost{}).
		Where("channel = ?", channel).
		Order("created_at DESC").
		Limit(poolLimit)
	err := r.db.WithContext(ctx).
		Table("(?) as pool", sub).
		Order("RANDOM()").
		Limit(sampleSize).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// SummarizeArchive aggregates posts that actually went out (external_id set),
// optionally restricted to a start date.
func (r *postRepository) SummarizeArchive(ctx context.Context, since *string) (*ArchiveSummary, error) {
	base := r.db.WithContext(ctx).
		Model(&models.SocialPost{}).
		Where("external_id <> ''")
	if since != nil {
		base = base.Where("created_at >= ?", *since)
	}

	summary := &ArchiveSummary{}
	if err := base.Session(&gorm.Session{}).Count(&summary.TotalPosts).Error; err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).
		Select("channel, COUNT(*) as count").
		Group("channel").
		Scan(&summary.ByChannel).Error; err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(10).
		Find(&summary.Recent).Error; err != nil {
		return nil, err
	}

	return summary, nil
}
