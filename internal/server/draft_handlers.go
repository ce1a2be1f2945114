package server

import (
	"time"

	"amplify/internal/models"
	"amplify/internal/repository"
	"amplify/internal/service"

	"github.com/gofiber/fiber/v2"
)

// createDraftRequest is the POST /api/drafts body.
type createDraftRequest struct {
	Content           string     `json:"content"`
	Channel           string     `json:"channel"`
	MediaURL          string     `json:"mediaUrl"`
	MediaType         string     `json:"mediaType"`
	Route             string     `json:"route"`
	ActionType        string     `json:"actionType"`
	TargetPostURN     string     `json:"targetPostUrn"`
	ScheduledFor      *time.Time `json:"scheduledFor"`
	ScheduledTimezone string     `json:"scheduledTimezone"`
}

// CreateDraft handles POST /api/drafts
func (s *Server) CreateDraft(c *fiber.Ctx) error {
	var req createDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	draft, err := s.draftService.Create(c.UserContext(), currentActor(c), service.CreateDraftInput{
		Content:           req.Content,
		Channel:           req.Channel,
		MediaURL:          req.MediaURL,
		MediaType:         req.MediaType,
		Route:             req.Route,
		ActionType:        req.ActionType,
		TargetPostURN:     req.TargetPostURN,
		ScheduledFor:      req.ScheduledFor,
		ScheduledTimezone: req.ScheduledTimezone,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"draft": draft})
}

// ListDrafts handles GET /api/drafts with route/status/channel filters.
func (s *Server) ListDrafts(c *fiber.Ctx) error {
	filter := repository.DraftFilter{
		Status:  c.Query("status"),
		Channel: c.Query("channel"),
	}
	if route := c.Query("route"); route != "" && route != "all" {
		filter.Route = route
	}

	drafts, err := s.draftService.List(c.UserContext(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"drafts": drafts})
}

// GetDraft handles GET /api/drafts/:id
func (s *Server) GetDraft(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	draft, err := s.draftService.Get(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"draft":       draft,
		"editHistory": draft.EditHistory,
	})
}

// updateDraftRequest is the PATCH /api/drafts/:id body. Pointer fields
// distinguish "absent" from "set to zero".
type updateDraftRequest struct {
	Content           *string    `json:"content"`
	MediaURL          *string    `json:"mediaUrl"`
	MediaType         *string    `json:"mediaType"`
	ScheduledFor      *time.Time `json:"scheduledFor"`
	ScheduledTimezone *string    `json:"scheduledTimezone"`
	EditSummary       string     `json:"editSummary"`
}

// UpdateDraft handles PATCH /api/drafts/:id
func (s *Server) UpdateDraft(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req updateDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	draft, err := s.draftService.Update(c.UserContext(), currentActor(c), id, service.UpdateDraftInput{
		Content:           req.Content,
		MediaURL:          req.MediaURL,
		MediaType:         req.MediaType,
		ScheduledFor:      req.ScheduledFor,
		ScheduledTimezone: req.ScheduledTimezone,
		EditSummary:       req.EditSummary,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"draft": draft})
}

// DeleteDraft handles DELETE /api/drafts/:id
func (s *Server) DeleteDraft(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.draftService.Delete(c.UserContext(), currentActor(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ApproveDraft handles POST /api/drafts/:id/approve
func (s *Server) ApproveDraft(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	draft, err := s.draftService.Approve(c.UserContext(), currentActor(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"draft": draft})
}

// RejectDraft handles POST /api/drafts/:id/reject
func (s *Server) RejectDraft(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&req) // reason is optional

	draft, err := s.draftService.Reject(c.UserContext(), currentActor(c), id, req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"draft": draft})
}

// ScheduleDraft handles POST /api/drafts/:id/schedule
func (s *Server) ScheduleDraft(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ScheduledFor *time.Time `json:"scheduledFor"`
		Timezone     string     `json:"timezone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ScheduledFor == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Scheduled time is required"))
	}

	draft, err := s.draftService.Schedule(c.UserContext(), id, *req.ScheduledFor, req.Timezone)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"draft":   draft,
		"message": "Scheduled successfully",
	})
}

// PublishDraft handles POST /api/drafts/:id/publish
func (s *Server) PublishDraft(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	draft, err := s.draftService.Publish(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"draft": draft})
}
