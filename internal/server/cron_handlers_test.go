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

func cronApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Get("/api/cron/generate-random", s.CronHealth)
	app.Post("/api/cron/generate-random", s.CronGenerateRandom)
	app.Post("/api/cron/publish-scheduled", s.CronPublishScheduled)
	return app
}

func TestCronHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	resp, err := cronApp(s).Test(jsonRequest(http.MethodGet, "/api/cron/generate-random", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "cron/generate-random", body["endpoint"])
}

func TestCronGenerateRandomEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := cronApp(s)

	cfg, _ := json.Marshal(models.CampaignSourceConfig{
		SourcePlatform: models.ChannelLinkedIn,
		PostsPerRun:    1,
	})
	seedCampaign(t, s, &models.Campaign{
		Name: "Random", Type: models.CampaignTypeRandom, Status: "active",
		IsActive: true, SourceConfig: cfg,
	})
	require.NoError(t, s.db.Create(&models.SocialPost{
		Channel: models.ChannelLinkedIn,
		Content: "a well received post",
	}).Error)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/cron/generate-random?force=true", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["generated"])
	assert.Equal(t, float64(1), body["campaigns"])

	var count int64
	require.NoError(t, s.db.Model(&models.PostDraft{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCronPublishScheduledEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := cronApp(s)

	due := pendingDraft("author@example.com")
	due.Status = models.DraftStatusScheduled
	past := time.Now().Add(-time.Hour)
	due.ScheduledFor = &past
	seedDraft(t, s, due)

	notYet := pendingDraft("author@example.com")
	notYet.Status = models.DraftStatusScheduled
	future := time.Now().Add(time.Hour)
	notYet.ScheduledFor = &future
	seedDraft(t, s, notYet)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/cron/publish-scheduled", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Published 1 posts, 0 failed", body["message"])
	assert.Len(t, body["published"], 1)

	var published models.PostDraft
	require.NoError(t, s.db.First(&published, "status = ?", models.DraftStatusPublished).Error)
	assert.NotEmpty(t, published.ExternalID)
}

func TestCronPublishScheduledEndpointNothingDue(t *testing.T) {
	s := newTestServer(t)
	resp, err := cronApp(s).Test(jsonRequest(http.MethodPost, "/api/cron/publish-scheduled", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Published 0 posts, 0 failed", body["message"])
}
