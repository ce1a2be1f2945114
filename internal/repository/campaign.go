package repository

import (
	"context"

	"amplify/internal/cache"
	"amplify/internal/models"

	"gorm.io/gorm"
)

// CampaignRepository defines the interface for campaign data operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id uint) (*models.Campaign, error)
	GetActiveByID(ctx context.Context, id uint) (*models.Campaign, error)
	List(ctx context.Context) ([]*models.Campaign, error)
	ListActiveByType(ctx context.Context, campaignType string) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id uint) error
}

type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	err := r.db.WithContext(ctx).Create(campaign).Error
	if err == nil {
		cache.InvalidateCampaignList(ctx)
	}
	return err
}

func (r *campaignRepository) GetByID(ctx context.Context, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.WithContext(ctx).First(&campaign, id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) GetActiveByID(ctx context.Context, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// List returns all campaigns with their post counts computed in a single
// query. post_count is a SELECT alias resolved into the unexported column.
func (r *campaignRepository) List(ctx context.Context) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	err := r.db.WithContext(ctx).
		Select("campaigns.*, " +
			"(SELECT COUNT(*) FROM posts WHERE posts.campaign_id = campaigns.id AND posts.deleted_at IS NULL) as post_count").
		Order("created_at DESC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepository) ListActiveByType(ctx context.Context, campaignType string) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND type = ?", true, campaignType).
		Order("created_at ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	err := r.db.WithContext(ctx).Save(campaign).Error
	if err == nil {
		cache.InvalidateCampaignList(ctx)
	}
	return err
}

func (r *campaignRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Delete(&models.Campaign{}, id).Error
	if err == nil {
		cache.InvalidateCampaignList(ctx)
	}
	return err
}
