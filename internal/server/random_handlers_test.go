package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"amplify/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Use(asUser("jane@example.com", "Jane"))
	app.Get("/api/random/posts", s.RandomFeed)
	app.Post("/api/random/posts/candidate", s.PromoteCandidate)
	app.Post("/api/random/posts/:id/action", s.ActOnRandomPost)
	return app
}

func seedRandomDraft(t *testing.T, s *Server, campaignID uint, status, channel string) *models.PostDraft {
	t.Helper()
	meta, _ := json.Marshal(models.GenerationMetadata{
		Winner: models.GenerationWinner{Source: "model-a", Content: "winner copy"},
		Candidates: []models.GenerationCandidate{
			{Source: "model-a", Content: "winner copy"},
			{Source: "model-b", Content: "runner-up copy"},
		},
	})
	d := &models.PostDraft{
		Content:            "winner copy",
		Channel:            channel,
		AuthorEmail:        "pipeline@example.com",
		AuthorName:         "Pipeline",
		Route:              models.DraftRouteProofreading,
		Status:             status,
		ActionType:         models.ActionTypePost,
		CampaignID:         &campaignID,
		GenerationMetadata: meta,
	}
	require.NoError(t, s.db.Create(d).Error)
	return d
}

func TestRandomFeedEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := randomApp(s)

	c := seedCampaign(t, s, &models.Campaign{
		Name: "Random", Type: models.CampaignTypeRandom, Status: "active", IsActive: true,
	})
	seedRandomDraft(t, s, c.ID, models.DraftStatusPendingReview, models.ChannelLinkedIn)
	seedRandomDraft(t, s, c.ID, models.DraftStatusApproved, models.ChannelX)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/random/posts", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["posts"], 2)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/random/posts?channel=x", nil))
	require.NoError(t, err)
	body = decodeBody(t, resp)
	posts := body["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "x", posts[0].(map[string]any)["channel"])

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/random/posts?status=pending_review", nil))
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Len(t, body["posts"], 1)
}

func TestActOnRandomPostEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := randomApp(s)

	c := seedCampaign(t, s, &models.Campaign{
		Name: "Random", Type: models.CampaignTypeRandom, Status: "active", IsActive: true,
	})

	t.Run("invalid action", func(t *testing.T) {
		d := seedRandomDraft(t, s, c.ID, models.DraftStatusPendingReview, models.ChannelLinkedIn)
		resp, err := app.Test(jsonRequest(http.MethodPost,
			draftActionPath(d.ID), fiber.Map{"action": "yeet"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Invalid action", body["error"])
	})

	t.Run("proofreading", func(t *testing.T) {
		d := seedRandomDraft(t, s, c.ID, models.DraftStatusPendingReview, models.ChannelLinkedIn)
		resp, err := app.Test(jsonRequest(http.MethodPost,
			draftActionPath(d.ID), fiber.Map{"action": "proofreading"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		post := body["post"].(map[string]any)
		assert.Equal(t, "proofreading", post["route"])
		assert.Equal(t, "pending_review", post["status"])
	})

	t.Run("schedule requires a time", func(t *testing.T) {
		d := seedRandomDraft(t, s, c.ID, models.DraftStatusPendingReview, models.ChannelLinkedIn)
		resp, err := app.Test(jsonRequest(http.MethodPost,
			draftActionPath(d.ID), fiber.Map{"action": "schedule"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Scheduled time is required", body["error"])
	})

	t.Run("schedule", func(t *testing.T) {
		d := seedRandomDraft(t, s, c.ID, models.DraftStatusPendingReview, models.ChannelLinkedIn)
		resp, err := app.Test(jsonRequest(http.MethodPost, draftActionPath(d.ID), fiber.Map{
			"action":       "schedule",
			"scheduledFor": time.Now().Add(3 * time.Hour).Format(time.RFC3339),
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		post := body["post"].(map[string]any)
		assert.Equal(t, "scheduled", post["status"])
		assert.Equal(t, models.DefaultTimezone, post["scheduled_timezone"])
	})

	t.Run("publish", func(t *testing.T) {
		d := seedRandomDraft(t, s, c.ID, models.DraftStatusPendingReview, models.ChannelLinkedIn)
		resp, err := app.Test(jsonRequest(http.MethodPost,
			draftActionPath(d.ID), fiber.Map{"action": "publish"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		post := body["post"].(map[string]any)
		assert.Equal(t, "published", post["status"])
	})

	t.Run("published posts are done", func(t *testing.T) {
		d := seedRandomDraft(t, s, c.ID, models.DraftStatusPublished, models.ChannelLinkedIn)
		resp, err := app.Test(jsonRequest(http.MethodPost,
			draftActionPath(d.ID), fiber.Map{"action": "proofreading"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Cannot action this post", body["error"])
	})
}

func TestPromoteCandidateEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := randomApp(s)

	c := seedCampaign(t, s, &models.Campaign{
		Name: "Random", Type: models.CampaignTypeRandom, Status: "active", IsActive: true,
	})
	d := seedRandomDraft(t, s, c.ID, models.DraftStatusPendingReview, models.ChannelLinkedIn)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/random/posts/candidate", fiber.Map{
		"originalPostId":   d.ID,
		"candidateContent": "runner-up copy",
		"candidateSource":  "model-b",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	draft := body["draft"].(map[string]any)
	assert.Equal(t, "runner-up copy", draft["content"])
	assert.Equal(t, "pending_review", draft["status"])
	assert.Equal(t, "proofreading", draft["route"])
}

func TestPromoteCandidateEndpointMissingFields(t *testing.T) {
	s := newTestServer(t)
	app := randomApp(s)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/random/posts/candidate", fiber.Map{
		"candidateContent": "no original",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Missing required fields", body["error"])
}

func draftActionPath(id uint) string {
	return "/api/random/posts/" + itoa(id) + "/action"
}
