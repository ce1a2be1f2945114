package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"amplify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPublisher_Publish(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/tweets", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"12345"}}`))
	}))
	defer srv.Close()

	p := NewXPublisher(srv.URL, "token-abc")

	t.Run("plain post", func(t *testing.T) {
		res, err := p.Publish(context.Background(), &models.PostDraft{
			Content:    "hello",
			ActionType: models.ActionTypePost,
		})
		require.NoError(t, err)
		assert.Equal(t, "12345", res.ExternalID)
		assert.Equal(t, "https://x.com/i/status/12345", res.ExternalURL)
		assert.Equal(t, "Bearer token-abc", gotAuth)
		assert.Equal(t, "hello", gotBody["text"])
	})

	t.Run("proofread revision wins", func(t *testing.T) {
		_, err := p.Publish(context.Background(), &models.PostDraft{
			Content:        "original",
			CurrentContent: "revised",
			ActionType:     models.ActionTypePost,
		})
		require.NoError(t, err)
		assert.Equal(t, "revised", gotBody["text"])
	})

	t.Run("reply targets the parent tweet", func(t *testing.T) {
		_, err := p.Publish(context.Background(), &models.PostDraft{
			Content:       "nice thread",
			ActionType:    models.ActionTypeComment,
			TargetPostURN: "999",
		})
		require.NoError(t, err)
		reply, ok := gotBody["reply"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "999", reply["in_reply_to_tweet_id"])
	})

	t.Run("likes unsupported", func(t *testing.T) {
		_, err := p.Publish(context.Background(), &models.PostDraft{ActionType: models.ActionTypeLike})
		assert.Error(t, err)
	})
}

func TestXPublisher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"title":"Forbidden"}`))
	}))
	defer srv.Close()

	p := NewXPublisher(srv.URL, "token-abc")
	_, err := p.Publish(context.Background(), &models.PostDraft{Content: "x", ActionType: models.ActionTypePost})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestXPublisher_NotConfigured(t *testing.T) {
	p := NewXPublisher("https://api.x.com", "")
	_, err := p.Publish(context.Background(), &models.PostDraft{Content: "x"})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	p := NewXPublisher("https://api.x.com", "t")
	reg := NewRegistry(p)

	got, err := reg.For(models.ChannelX)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = reg.For(models.ChannelInstagram)
	assert.Error(t, err)
}
