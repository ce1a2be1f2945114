package server

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore fakes the object store with deterministic URLs.
type stubStore struct {
	lastKey string
}

func (s *stubStore) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	s.lastKey = key
	return "https://storage.example.com/presigned/" + key, nil
}

func (s *stubStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (s *stubStore) Delete(context.Context, string) error { return nil }

func uploadApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Use(asUser("jane@example.com", "Jane"))
	app.Post("/api/upload/presign", s.PresignUpload)
	return app
}

func TestPresignUpload(t *testing.T) {
	s := newTestServer(t)
	store := &stubStore{}
	s.store = store
	app := uploadApp(s)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/upload/presign", fiber.Map{
		"filename":    "launch.mp4",
		"contentType": "video/mp4",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	key := body["key"].(string)
	assert.True(t, strings.HasPrefix(key, "social-media-uploads/"))
	assert.True(t, strings.HasSuffix(key, ".mp4"))
	assert.Equal(t, "https://storage.example.com/presigned/"+key, body["presignedUrl"])
	assert.Equal(t, "https://cdn.example.com/"+key, body["fileUrl"])
	assert.Equal(t, key, store.lastKey)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/upload/presign", fiber.Map{
		"filename":    "a.png/..x",
		"contentType": "image/png",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)

	key = body["key"].(string)
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotContains(t, strings.TrimPrefix(key, "social-media-uploads/"), "/")
}

func TestPresignUploadValidation(t *testing.T) {
	s := newTestServer(t)
	s.store = &stubStore{}
	app := uploadApp(s)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/upload/presign", fiber.Map{
		"filename": "launch.mp4",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "filename and contentType are required", body["error"])

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/upload/presign", fiber.Map{
		"filename":    "malware.exe",
		"contentType": "application/octet-stream",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Invalid content type", body["error"])
}

func TestPresignUploadUnconfigured(t *testing.T) {
	s := newTestServer(t)
	app := uploadApp(s)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/upload/presign", fiber.Map{
		"filename":    "launch.mp4",
		"contentType": "video/mp4",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Object storage is not configured", body["error"])
}
