package server

import (
	"net/http"
	"testing"

	"amplify/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Use(asUser("admin@example.com", "Admin"))
	app.Delete("/api/post/delete", s.AdminDeleteArchivedPost)
	return app
}

func TestAdminDeleteArchivedPost(t *testing.T) {
	s := newTestServer(t)
	app := adminApp(s)

	require.NoError(t, s.db.Create(&models.SocialPost{
		Channel: models.ChannelLinkedIn, Content: "archived", ExternalID: "ext-1",
	}).Error)

	resp, err := app.Test(jsonRequest(http.MethodDelete, "/api/post/delete", fiber.Map{
		"postId": 1,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	var count int64
	require.NoError(t, s.db.Model(&models.SocialPost{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAdminDeleteArchivedPostByQuery(t *testing.T) {
	s := newTestServer(t)
	app := adminApp(s)

	require.NoError(t, s.db.Create(&models.SocialPost{
		Channel: models.ChannelX, Content: "archived", ExternalID: "ext-2",
	}).Error)

	resp, err := app.Test(jsonRequest(http.MethodDelete, "/api/post/delete?postId=1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminDeleteArchivedPostErrors(t *testing.T) {
	s := newTestServer(t)
	app := adminApp(s)

	resp, err := app.Test(jsonRequest(http.MethodDelete, "/api/post/delete", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Post ID required", body["error"])

	resp, err = app.Test(jsonRequest(http.MethodDelete, "/api/post/delete", fiber.Map{
		"postId": 999,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Post not found", body["error"])
}
