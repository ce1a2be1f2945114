package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"amplify/internal/models"
	"amplify/internal/notifications"
	"amplify/internal/publish"
	"amplify/internal/repository"
	"amplify/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubPublisher satisfies publish.Publisher without hitting the network.
type stubPublisher struct {
	channel string
}

func (p *stubPublisher) Channel() string { return p.channel }

func (p *stubPublisher) Publish(_ context.Context, draft *models.PostDraft) (*publish.Result, error) {
	return &publish.Result{
		ExternalID:  fmt.Sprintf("stub-%d", draft.ID),
		ExternalURL: fmt.Sprintf("https://example.com/stub-%d", draft.ID),
	}, nil
}

// stubGenerator returns a fixed council response.
type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, platform, _ string) (*models.LLMCouncilResponse, error) {
	return &models.LLMCouncilResponse{
		Content: "generated for " + platform,
		Source:  "model-a",
		Reason:  "judge pick",
		Candidates: []models.GenerationCandidate{
			{Source: "model-a", Content: "generated for " + platform},
			{Source: "model-b", Content: "alternate for " + platform},
		},
		ModelsUsed: []string{"model-a", "model-b"},
	}, nil
}

// newTestServer builds a Server on an in-memory database with stubbed
// outbound integrations. No Redis; cache reads fall through to the database.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Campaign{},
		&models.Post{},
		&models.SocialPost{},
		&models.PostDraft{},
		&models.PostEditHistory{},
		&models.Notification{},
		&models.FollowerSnapshot{},
		&models.LinkedInConnection{},
	))

	s := &Server{
		db: db,

		userRepo:         repository.NewUserRepository(db),
		campaignRepo:     repository.NewCampaignRepository(db),
		postRepo:         repository.NewPostRepository(db),
		draftRepo:        repository.NewDraftRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		snapshotRepo:     repository.NewSnapshotRepository(db),
	}

	s.notifier = notifications.NewNotifier(s.notificationRepo, nil)

	registry := publish.NewRegistry(
		&stubPublisher{channel: models.ChannelLinkedIn},
		&stubPublisher{channel: models.ChannelX},
	)

	s.draftService = service.NewDraftService(s.draftRepo, registry, s.notifier)
	s.postService = service.NewPostService(s.postRepo, s.campaignRepo, s.userRepo)
	s.generationService = service.NewGenerationService(
		s.campaignRepo, s.postRepo, s.draftRepo, stubGenerator{}, s.notifier)
	s.analyticsService = service.NewAnalyticsService(s.snapshotRepo, s.postRepo)

	return s
}

// asUser injects a signed-in staff identity the way the auth middleware does.
func asUser(email, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userEmail", email)
		c.Locals("userName", name)
		c.Locals("userRole", models.RoleContributor)
		c.Locals("userID", uint(1))
		return c.Next()
	}
}

func jsonRequest(method, target string, payload any) *http.Request {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func seedCampaign(t *testing.T, s *Server, campaign *models.Campaign) *models.Campaign {
	t.Helper()
	require.NoError(t, s.db.Create(campaign).Error)
	return campaign
}

func seedUser(t *testing.T, s *Server, email, name string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: name, Role: models.RoleContributor}
	require.NoError(t, s.db.Create(u).Error)
	return u
}

func seedDraft(t *testing.T, s *Server, draft *models.PostDraft) *models.PostDraft {
	t.Helper()
	if draft.Channel == "" {
		draft.Channel = models.ChannelLinkedIn
	}
	if draft.ActionType == "" {
		draft.ActionType = models.ActionTypePost
	}
	require.NoError(t, s.db.Create(draft).Error)
	return draft
}

// --- parseID ---

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Invalid ID", body["error"])
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "post ID", humanizeParam("postId"))
}

// --- respondServiceError ---

func TestRespondServiceError(t *testing.T) {
	app := fiber.New()
	app.Get("/fail/:kind", func(c *fiber.Ctx) error {
		switch c.Params("kind") {
		case "validation":
			return respondServiceError(c, models.NewValidationError("Bad input"))
		case "notfound":
			return respondServiceError(c, models.NewNotFoundError("Missing"))
		case "forbidden":
			return respondServiceError(c, models.NewForbiddenError("Nope"))
		default:
			return respondServiceError(c, models.NewInternalError(fmt.Errorf("boom")))
		}
	})

	cases := []struct {
		kind   string
		status int
	}{
		{"validation", http.StatusBadRequest},
		{"notfound", http.StatusNotFound},
		{"forbidden", http.StatusForbidden},
		{"internal", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail/"+tc.kind, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}

func pendingDraft(author string) *models.PostDraft {
	return &models.PostDraft{
		Content:     "hello from tests",
		Channel:     models.ChannelLinkedIn,
		AuthorEmail: author,
		AuthorName:  "Author",
		Route:       models.DraftRouteProofreading,
		Status:      models.DraftStatusPendingReview,
		ActionType:  models.ActionTypePost,
	}
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
