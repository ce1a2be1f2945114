package repository

import (
	"context"
	"testing"

	"amplify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestCampaignRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCampaignRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("List computes post counts", func(t *testing.T) {
		c1 := &models.Campaign{Name: "Launch", Type: models.CampaignTypeCurated, IsActive: true}
		c2 := &models.Campaign{Name: "Evergreen", Type: models.CampaignTypeCurated, IsActive: true}
		require.NoError(t, repo.Create(ctx, c1))
		require.NoError(t, repo.Create(ctx, c2))

		user := &models.User{AuthID: "auth-1", Email: "jane@example.com", Name: "Jane"}
		require.NoError(t, db.Create(user).Error)

		for i := 0; i < 3; i++ {
			require.NoError(t, postRepo.Create(ctx, &models.Post{
				CampaignID: c1.ID,
				AuthorID:   user.ID,
				Content:    "post",
				SourceType: models.SourceTypeEmployeeComposed,
			}))
		}

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)

		counts := map[string]int{}
		for _, c := range list {
			counts[c.Name] = c.PostCount
		}
		assert.Equal(t, 3, counts["Launch"])
		assert.Equal(t, 0, counts["Evergreen"])
	})

	t.Run("GetActiveByID rejects inactive campaigns", func(t *testing.T) {
		inactive := &models.Campaign{Name: "Closed", IsActive: false}
		require.NoError(t, repo.Create(ctx, inactive))

		_, err := repo.GetActiveByID(ctx, inactive.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("ListActiveByType", func(t *testing.T) {
		random := &models.Campaign{
			Name:         "Auto",
			Type:         models.CampaignTypeRandom,
			IsActive:     true,
			SourceConfig: datatypes.JSON(`{"source_platform":"x","posts_per_run":2}`),
		}
		require.NoError(t, repo.Create(ctx, random))

		list, err := repo.ListActiveByType(ctx, models.CampaignTypeRandom)
		require.NoError(t, err)
		require.Len(t, list, 1)

		cfg := list[0].ParseSourceConfig()
		assert.Equal(t, "x", cfg.SourcePlatform)
		assert.Equal(t, 2, cfg.PostsPerRun)
		assert.Equal(t, 50, cfg.PostsLimit)
	})
}
