package service

import (
	"context"
	"testing"

	"amplify/internal/models"
	"amplify/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPostService(t *testing.T) (*gorm.DB, *PostService) {
	t.Helper()
	db, _, _ := setupServiceTest(t)
	posts := NewPostService(
		repository.NewPostRepository(db),
		repository.NewCampaignRepository(db),
		repository.NewUserRepository(db),
	)
	return db, posts
}

func seedComposeFixtures(t *testing.T, db *gorm.DB) (*models.Campaign, *models.User) {
	t.Helper()
	campaign := &models.Campaign{Name: "Launch week", Type: models.CampaignTypeCurated, IsActive: true}
	require.NoError(t, db.Create(campaign).Error)
	user := &models.User{Email: "jane@example.com", Name: "Jane", Role: "contributor"}
	require.NoError(t, db.Create(user).Error)
	return campaign, user
}

func TestPostService_Compose(t *testing.T) {
	db, svc := setupPostService(t)
	ctx := context.Background()
	campaign, user := seedComposeFixtures(t, db)

	t.Run("creates a post in review", func(t *testing.T) {
		post, err := svc.Compose(ctx, jane(), ComposePostInput{
			CampaignID: campaign.ID,
			Content:    "  Announcing our launch  ",
			Channel:    models.ChannelLinkedIn,
		})
		require.NoError(t, err)
		assert.Equal(t, "Announcing our launch", post.Content)
		assert.Equal(t, models.DraftStatusPendingReview, post.Status)
		assert.Equal(t, models.SourceTypeEmployeeComposed, post.SourceType)
		assert.Equal(t, user.ID, post.AuthorID)
	})

	t.Run("requires campaign and content", func(t *testing.T) {
		_, err := svc.Compose(ctx, jane(), ComposePostInput{Content: "no campaign"})
		require.Error(t, err)
		assert.Equal(t, "Campaign ID and content are required", err.(*models.AppError).Message)

		_, err = svc.Compose(ctx, jane(), ComposePostInput{CampaignID: campaign.ID, Content: "   "})
		require.Error(t, err)
		assert.Equal(t, "Campaign ID and content are required", err.(*models.AppError).Message)
	})

	t.Run("rejects unknown campaign", func(t *testing.T) {
		_, err := svc.Compose(ctx, jane(), ComposePostInput{CampaignID: 9999, Content: "hi"})
		require.Error(t, err)
		assert.Equal(t, "Campaign not found", err.(*models.AppError).Message)
	})

	t.Run("rejects inactive campaign", func(t *testing.T) {
		paused := &models.Campaign{Name: "Done", IsActive: false}
		require.NoError(t, db.Create(paused).Error)

		_, err := svc.Compose(ctx, jane(), ComposePostInput{CampaignID: paused.ID, Content: "hi"})
		require.Error(t, err)
		assert.Equal(t, "Campaign not found", err.(*models.AppError).Message)
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		ghost := Actor{Email: "ghost@example.com"}
		_, err := svc.Compose(ctx, ghost, ComposePostInput{CampaignID: campaign.ID, Content: "hi"})
		require.Error(t, err)
		assert.Equal(t, "User not found", err.(*models.AppError).Message)
	})
}

func TestPostService_DeleteComposed(t *testing.T) {
	db, svc := setupPostService(t)
	ctx := context.Background()
	campaign, user := seedComposeFixtures(t, db)

	composed := &models.Post{
		CampaignID: campaign.ID, AuthorID: user.ID,
		Content: "mine", SourceType: models.SourceTypeEmployeeComposed,
	}
	require.NoError(t, db.Create(composed).Error)

	generated := &models.Post{
		CampaignID: campaign.ID, AuthorID: user.ID,
		Content: "machine made", SourceType: models.SourceTypeAIGenerated,
	}
	require.NoError(t, db.Create(generated).Error)

	t.Run("missing post", func(t *testing.T) {
		err := svc.DeleteComposed(ctx, jane(), 9999)
		require.Error(t, err)
		assert.Equal(t, "Post not found", err.(*models.AppError).Message)
	})

	t.Run("only the author", func(t *testing.T) {
		err := svc.DeleteComposed(ctx, Actor{Email: "bob@example.com"}, composed.ID)
		require.Error(t, err)
		appErr := err.(*models.AppError)
		assert.Equal(t, "Not authorized to delete this post", appErr.Message)
		assert.Equal(t, "FORBIDDEN", appErr.Code)
	})

	t.Run("only composed posts", func(t *testing.T) {
		err := svc.DeleteComposed(ctx, jane(), generated.ID)
		require.Error(t, err)
		assert.Equal(t, "Can only delete your own composed posts", err.(*models.AppError).Message)
	})

	t.Run("author deletes own post", func(t *testing.T) {
		require.NoError(t, svc.DeleteComposed(ctx, jane(), composed.ID))
		err := svc.DeleteComposed(ctx, jane(), composed.ID)
		require.Error(t, err)
		assert.Equal(t, "Post not found", err.(*models.AppError).Message)
	})
}

func TestPostService_DeleteArchived(t *testing.T) {
	db, svc := setupPostService(t)
	ctx := context.Background()

	archived := &models.SocialPost{Channel: models.ChannelX, Content: "old", ExternalID: "123"}
	require.NoError(t, db.Create(archived).Error)

	require.NoError(t, svc.DeleteArchived(ctx, archived.ID))

	err := svc.DeleteArchived(ctx, archived.ID)
	require.Error(t, err)
	assert.Equal(t, "Post not found", err.(*models.AppError).Message)
}
