package server

import (
	"net/http"
	"testing"
	"time"

	"amplify/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftApp(s *Server, email string) *fiber.App {
	app := fiber.New()
	app.Use(asUser(email, "Reviewer"))
	drafts := app.Group("/api/drafts")
	drafts.Post("", s.CreateDraft)
	drafts.Get("", s.ListDrafts)
	drafts.Get("/:id", s.GetDraft)
	drafts.Patch("/:id", s.UpdateDraft)
	drafts.Delete("/:id", s.DeleteDraft)
	drafts.Post("/:id/approve", s.ApproveDraft)
	drafts.Post("/:id/reject", s.RejectDraft)
	drafts.Post("/:id/schedule", s.ScheduleDraft)
	drafts.Post("/:id/publish", s.PublishDraft)
	return app
}

func TestCreateDraftEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := draftApp(s, "jane@example.com")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/drafts", fiber.Map{
		"content": "A launch announcement",
		"channel": "linkedin",
		"route":   "proofreading",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	draft := body["draft"].(map[string]any)
	assert.Equal(t, "pending_review", draft["status"])
	assert.Equal(t, "jane@example.com", draft["author_email"])
}

func TestCreateDraftEndpointValidation(t *testing.T) {
	s := newTestServer(t)
	app := draftApp(s, "jane@example.com")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/drafts", fiber.Map{
		"channel": "linkedin",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Content is required", body["error"])
}

func TestListDraftsFilters(t *testing.T) {
	s := newTestServer(t)
	app := draftApp(s, "jane@example.com")

	seedDraft(t, s, pendingDraft("a@example.com"))
	approved := pendingDraft("b@example.com")
	approved.Status = models.DraftStatusApproved
	approved.Channel = models.ChannelX
	seedDraft(t, s, approved)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/drafts?status=approved", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["drafts"], 1)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/drafts?channel=linkedin", nil))
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Len(t, body["drafts"], 1)
}

func TestGetDraftNotFound(t *testing.T) {
	s := newTestServer(t)
	app := draftApp(s, "jane@example.com")

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/drafts/999", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Draft not found", body["error"])
}

func TestApproveDraftEndpoint(t *testing.T) {
	s := newTestServer(t)

	seedDraft(t, s, pendingDraft("author@example.com"))

	// Proofreading sign-off belongs to the original author.
	resp, err := draftApp(s, "other@example.com").Test(
		jsonRequest(http.MethodPost, "/api/drafts/1/approve", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = draftApp(s, "author@example.com").Test(
		jsonRequest(http.MethodPost, "/api/drafts/1/approve", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	draft := body["draft"].(map[string]any)
	assert.Equal(t, "approved", draft["status"])
	assert.NotNil(t, draft["approved_at"])
}

func TestRejectDraftEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := draftApp(s, "author@example.com")

	seedDraft(t, s, pendingDraft("author@example.com"))

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/drafts/1/reject", fiber.Map{
		"reason": "tone is off",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	draft := body["draft"].(map[string]any)
	assert.Equal(t, "rejected", draft["status"])
	assert.Equal(t, "tone is off", draft["rejection_reason"])
}

func TestScheduleDraftEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := draftApp(s, "reviewer@example.com")

	d := pendingDraft("author@example.com")
	d.Status = models.DraftStatusApproved
	seedDraft(t, s, d)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/drafts/1/schedule", fiber.Map{
		"scheduledFor": time.Now().Add(2 * time.Hour).Format(time.RFC3339),
		"timezone":     "America/Chicago",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Scheduled successfully", body["message"])
	draft := body["draft"].(map[string]any)
	assert.Equal(t, "scheduled", draft["status"])
	assert.Equal(t, "America/Chicago", draft["scheduled_timezone"])
}

func TestScheduleDraftEndpointMissingTime(t *testing.T) {
	s := newTestServer(t)
	app := draftApp(s, "reviewer@example.com")

	d := pendingDraft("author@example.com")
	d.Status = models.DraftStatusApproved
	seedDraft(t, s, d)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/drafts/1/schedule", fiber.Map{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Scheduled time is required", body["error"])
}

func TestPublishDraftEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := draftApp(s, "reviewer@example.com")

	d := pendingDraft("author@example.com")
	d.Status = models.DraftStatusApproved
	seedDraft(t, s, d)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/drafts/1/publish", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	draft := body["draft"].(map[string]any)
	assert.Equal(t, "published", draft["status"])
	assert.NotEmpty(t, draft["external_id"])
}

func TestUpdateDraftEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := draftApp(s, "editor@example.com")

	seedDraft(t, s, pendingDraft("author@example.com"))

	resp, err := app.Test(jsonRequest(http.MethodPatch, "/api/drafts/1", fiber.Map{
		"content":     "tightened copy",
		"editSummary": "shortened the hook",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	draft := body["draft"].(map[string]any)
	assert.Equal(t, "tightened copy", draft["current_content"])
	assert.Equal(t, "hello from tests", draft["content"])

	var history []models.PostEditHistory
	require.NoError(t, s.db.Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, "editor@example.com", history[0].EditorEmail)
}

func TestDeleteDraftEndpoint(t *testing.T) {
	s := newTestServer(t)
	app := draftApp(s, "jane@example.com")

	seedDraft(t, s, pendingDraft("jane@example.com"))

	resp, err := app.Test(jsonRequest(http.MethodDelete, "/api/drafts/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	var count int64
	require.NoError(t, s.db.Model(&models.PostDraft{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
