package server

import (
	"fmt"
	"time"

	"amplify/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const presignExpiry = time.Hour

// uploadExtensions is the media allow-list for presigned uploads. The key
// extension comes from here, never from the client filename.
var uploadExtensions = map[string]string{
	"video/mp4":       "mp4",
	"video/quicktime": "mov",
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/webp":      "webp",
}

// PresignUpload handles POST /api/upload/presign. The browser uploads
// directly to object storage with the returned URL.
func (s *Server) PresignUpload(c *fiber.Ctx) error {
	if s.store == nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewValidationError("Object storage is not configured"))
	}

	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Filename == "" || req.ContentType == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("filename and contentType are required"))
	}
	extension, ok := uploadExtensions[req.ContentType]
	if !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid content type"))
	}
	key := fmt.Sprintf("social-media-uploads/%s.%s", uuid.NewString(), extension)

	presignedURL, err := s.store.PresignPut(c.UserContext(), key, presignExpiry)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"presignedUrl": presignedURL,
		"fileUrl":      s.store.PublicURL(key),
		"key":          key,
	})
}
