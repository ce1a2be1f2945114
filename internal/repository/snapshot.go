package repository

import (
	"context"

	"amplify/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotRepository defines the interface for follower snapshot and
// LinkedIn connection data operations
type SnapshotRepository interface {
	UpsertDaily(ctx context.Context, platform string, date string, count int, metadata datatypes.JSON) error
	HistorySince(ctx context.Context, since string, platform string) ([]*models.FollowerSnapshot, error)

	GetConnection(ctx context.Context) (*models.LinkedInConnection, error)
	SaveConnection(ctx context.Context, conn *models.LinkedInConnection) error
	TouchConnection(ctx context.Context, id uint) error
	DeleteConnection(ctx context.Context, userEmail string) error
}

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// UpsertDaily records the day's follower count, overwriting an existing row
// for the same (platform, date) pair.
func (r *snapshotRepository) UpsertDaily(ctx context.Context, platform string, date string, count int, metadata datatypes.JSON) error {
	snapshot := models.FollowerSnapshot{
		Platform:      platform,
		SnapshotDate:  date,
		FollowerCount: count,
		Metadata:      metadata,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform"}, {Name: "snapshot_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"follower_count", "metadata"}),
		}).
		Create(&snapshot).Error
}

func (r *snapshotRepository) HistorySince(ctx context.Context, since string, platform string) ([]*models.FollowerSnapshot, error) {
	var snapshots []*models.FollowerSnapshot
	q := r.db.WithContext(ctx).Where("snapshot_date >= ?", since)
	if platform != "" && platform != "all" {
		q = q.Where("platform = ?", platform)
	}
	err := q.Order("snapshot_date ASC").Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// GetConnection returns the organization's LinkedIn grant. There is at most
// one row; most recently updated wins if legacy data left more.
func (r *snapshotRepository) GetConnection(ctx context.Context) (*models.LinkedInConnection, error) {
	var conn models.LinkedInConnection
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *snapshotRepository) SaveConnection(ctx context.Context, conn *models.LinkedInConnection) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "expires_at",
				"organization_id", "organization_name", "scope", "updated_at",
			}),
		}).
		Create(conn).Error
}

func (r *snapshotRepository) TouchConnection(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.LinkedInConnection{}).
		Where("id = ?", id).
		Update("last_used_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *snapshotRepository) DeleteConnection(ctx context.Context, userEmail string) error {
	return r.db.WithContext(ctx).
		Where("user_email = ?", userEmail).
		Delete(&models.LinkedInConnection{}).Error
}
