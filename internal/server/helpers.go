package server

import (
	"errors"

	"amplify/internal/models"
	"amplify/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

func humanizeParam(param string) string {
	switch param {
	case "id":
		return "ID"
	case "postId":
		return "post ID"
	}
	return param
}

// currentActor builds the acting user identity from the session locals set
// by the auth middleware.
func currentActor(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if email, ok := c.Locals("userEmail").(string); ok {
		actor.Email = email
	}
	if name, ok := c.Locals("userName").(string); ok {
		actor.Name = name
	}
	if id, ok := c.Locals("userID").(uint); ok {
		actor.ID = &id
	}
	return actor
}

// respondServiceError maps application errors onto HTTP statuses.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "VALIDATION_ERROR":
			status = fiber.StatusBadRequest
		case "NOT_FOUND":
			status = fiber.StatusNotFound
		case "UNAUTHORIZED":
			status = fiber.StatusUnauthorized
		case "FORBIDDEN":
			status = fiber.StatusForbidden
		}
	}
	return models.RespondWithError(c, status, err)
}
