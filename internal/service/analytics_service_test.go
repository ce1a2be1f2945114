package service

import (
	"context"
	"testing"
	"time"

	"amplify/internal/models"
	"amplify/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAnalyticsTest(t *testing.T) (*gorm.DB, *AnalyticsService) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.FollowerSnapshot{}, &models.SocialPost{}))

	svc := NewAnalyticsService(
		repository.NewSnapshotRepository(db),
		repository.NewPostRepository(db),
	)
	return db, svc
}

func snapshotDate(daysAgo int) string {
	return time.Now().AddDate(0, 0, -daysAgo).Format("2006-01-02")
}

func TestAnalyticsService_History(t *testing.T) {
	db, svc := setupAnalyticsTest(t)
	ctx := context.Background()

	rows := []models.FollowerSnapshot{
		{Platform: models.ChannelX, FollowerCount: 100, SnapshotDate: snapshotDate(2)},
		{Platform: models.ChannelLinkedIn, FollowerCount: 250, SnapshotDate: snapshotDate(2)},
		{Platform: models.ChannelX, FollowerCount: 110, SnapshotDate: snapshotDate(1)},
		{Platform: models.ChannelX, FollowerCount: 90, SnapshotDate: snapshotDate(90)},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	t.Run("merges platforms per day", func(t *testing.T) {
		history, err := svc.History(ctx, 30, "all")
		require.NoError(t, err)
		require.Len(t, history.History, 2)

		first := history.History[0]
		assert.Equal(t, snapshotDate(2), first.Date)
		assert.Equal(t, 100, first.X)
		assert.Equal(t, 250, first.LinkedIn)
		assert.Equal(t, 350, first.Total)

		second := history.History[1]
		assert.Equal(t, 110, second.X)
		assert.Equal(t, 0, second.LinkedIn)
		assert.Equal(t, 110, second.Total)

		assert.Len(t, history.ByPlatform[models.ChannelX], 2)
		assert.Len(t, history.ByPlatform[models.ChannelLinkedIn], 1)
	})

	t.Run("filters by platform", func(t *testing.T) {
		history, err := svc.History(ctx, 30, models.ChannelLinkedIn)
		require.NoError(t, err)
		require.Len(t, history.History, 1)
		assert.Equal(t, 250, history.History[0].LinkedIn)
		assert.Zero(t, history.History[0].X)
	})

	t.Run("window excludes old samples", func(t *testing.T) {
		history, err := svc.History(ctx, 365, models.ChannelX)
		require.NoError(t, err)
		assert.Len(t, history.History, 3)

		history, err = svc.History(ctx, 30, models.ChannelX)
		require.NoError(t, err)
		assert.Len(t, history.History, 2)
	})
}

func TestAnalyticsService_Summary(t *testing.T) {
	db, svc := setupAnalyticsTest(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.SocialPost{
		Channel: models.ChannelX, Content: "published", ExternalID: "x-1",
	}).Error)
	require.NoError(t, db.Create(&models.SocialPost{
		Channel: models.ChannelLinkedIn, Content: "published", ExternalID: "li-1",
	}).Error)
	// Never went out; must not count.
	require.NoError(t, db.Create(&models.SocialPost{
		Channel: models.ChannelX, Content: "draft only",
	}).Error)

	summary, err := svc.Summary(ctx, "all")
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalPosts)
	assert.Len(t, summary.Recent, 2)

	_, err = svc.Summary(ctx, "2y")
	require.Error(t, err)
	assert.Equal(t, "Invalid period", err.(*models.AppError).Message)
}
