package repository

import (
	"context"
	"fmt"
	"testing"

	"amplify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	t.Run("ListRecent caps at the feed limit", func(t *testing.T) {
		for i := 0; i < feedLimit+10; i++ {
			require.NoError(t, repo.Create(ctx, &models.Notification{
				UserEmail: "jane@example.com",
				Type:      models.NotificationDraftApproved,
				Title:     fmt.Sprintf("n%d", i),
			}))
		}

		list, err := repo.ListRecent(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Len(t, list, feedLimit)
	})

	t.Run("CountUnread sees past the feed page", func(t *testing.T) {
		count, err := repo.CountUnread(ctx, "jane@example.com")
		require.NoError(t, err)
		// All seeded rows are unread, including those beyond the page.
		assert.Equal(t, int64(feedLimit+10), count)
	})

	t.Run("MarkRead is scoped to the owner", func(t *testing.T) {
		mine := &models.Notification{UserEmail: "jane@example.com", Title: "mine"}
		theirs := &models.Notification{UserEmail: "bob@example.com", Title: "theirs"}
		require.NoError(t, repo.Create(ctx, mine))
		require.NoError(t, repo.Create(ctx, theirs))

		// Attempt to ack someone else's row alongside our own.
		require.NoError(t, repo.MarkRead(ctx, "jane@example.com", []uint{mine.ID, theirs.ID}))

		var got models.Notification
		require.NoError(t, db.First(&got, mine.ID).Error)
		assert.True(t, got.IsRead)
		require.NoError(t, db.First(&got, theirs.ID).Error)
		assert.False(t, got.IsRead)
	})

	t.Run("MarkAllRead", func(t *testing.T) {
		require.NoError(t, repo.MarkAllRead(ctx, "jane@example.com"))

		count, err := repo.CountUnread(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		// Other users' unread rows are untouched.
		count, err = repo.CountUnread(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("MarkRead with no ids is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.MarkRead(ctx, "jane@example.com", nil))
	})
}
