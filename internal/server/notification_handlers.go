package server

import (
	"amplify/internal/cache"
	"amplify/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListNotifications handles GET /api/notifications: the 50 most recent feed
// entries plus the caller's total unread count.
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	email, _ := c.Locals("userEmail").(string)

	notifications, err := s.notificationRepo.ListRecent(ctx, email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Counted over all rows, not just the returned page, so the badge stays
	// correct once unread entries age past the feed window.
	var unread int64
	err = cache.Aside(ctx, cache.UnreadCountKey(email), &unread, cache.UnreadCountTTL, func() error {
		var err error
		unread, err = s.notificationRepo.CountUnread(ctx, email)
		return err
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"unreadCount":   unread,
	})
}

// UpdateNotifications handles POST /api/notifications bulk actions.
func (s *Server) UpdateNotifications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	email, _ := c.Locals("userEmail").(string)

	var req struct {
		Action          string `json:"action"`
		NotificationIDs []uint `json:"notificationIds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	switch req.Action {
	case "mark_read":
		if err := s.notificationRepo.MarkRead(ctx, email, req.NotificationIDs); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	case "mark_all_read":
		if err := s.notificationRepo.MarkAllRead(ctx, email); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid action"))
	}

	return c.JSON(fiber.Map{"success": true})
}
