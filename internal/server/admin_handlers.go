package server

import (
	"strconv"

	"amplify/internal/models"

	"github.com/gofiber/fiber/v2"
)

// adminDeleteRequest is the DELETE /api/post/delete body.
type adminDeleteRequest struct {
	PostID uint `json:"postId"`
}

// AdminDeleteArchivedPost handles DELETE /api/post/delete. Published posts
// are the durable archive, so removal is admin-only.
func (s *Server) AdminDeleteArchivedPost(c *fiber.Ctx) error {
	var req adminDeleteRequest
	_ = c.BodyParser(&req)
	if req.PostID == 0 {
		if raw := c.Query("postId"); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
				req.PostID = uint(id)
			}
		}
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Post ID required"))
	}

	if err := s.postService.DeleteArchived(c.UserContext(), req.PostID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
