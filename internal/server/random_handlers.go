package server

import (
	"time"

	"amplify/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RandomFeed handles GET /api/random/posts with channel/status filters.
func (s *Server) RandomFeed(c *fiber.Ctx) error {
	drafts, err := s.generationService.Feed(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}

	channel := c.Query("channel")
	status := c.Query("status")
	if channel != "" || status != "" {
		filtered := drafts[:0]
		for _, d := range drafts {
			if channel != "" && d.Channel != channel {
				continue
			}
			if status != "" && d.Status != status {
				continue
			}
			filtered = append(filtered, d)
		}
		drafts = filtered
	}
	return c.JSON(fiber.Map{"posts": drafts})
}

// randomActionRequest is the POST /api/random/posts/:id/action body.
type randomActionRequest struct {
	Action       string     `json:"action"`
	ScheduledFor *time.Time `json:"scheduledFor"`
	Timezone     string     `json:"timezone"`
}

// ActOnRandomPost handles POST /api/random/posts/:id/action
func (s *Server) ActOnRandomPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req randomActionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Timezone == "" {
		req.Timezone = models.DefaultTimezone
	}

	draft, err := s.generationService.Act(c.UserContext(), s.draftService, id, req.Action, req.ScheduledFor, req.Timezone)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"post": draft})
}

// promoteCandidateRequest is the POST /api/random/posts/candidate body.
type promoteCandidateRequest struct {
	OriginalPostID   uint   `json:"originalPostId"`
	CandidateContent string `json:"candidateContent"`
	CandidateSource  string `json:"candidateSource"`
}

// PromoteCandidate handles POST /api/random/posts/candidate. A reviewer
// picked an alternate council candidate over the judged winner; the
// candidate becomes a fresh proofreading draft tied to the same campaign.
func (s *Server) PromoteCandidate(c *fiber.Ctx) error {
	var req promoteCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.OriginalPostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing required fields"))
	}

	draft, err := s.generationService.PromoteCandidate(c.UserContext(), req.OriginalPostID, req.CandidateContent, req.CandidateSource)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"draft": draft})
}
