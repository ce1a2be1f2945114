package server

import (
	"encoding/json"
	"time"

	"amplify/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// FollowerHistory handles GET /api/analytics/followers/history
func (s *Server) FollowerHistory(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	platform := c.Query("platform", "all")

	history, err := s.analyticsService.History(c.UserContext(), days, platform)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(history)
}

// AnalyticsSummary handles GET /api/analytics/summary
func (s *Server) AnalyticsSummary(c *fiber.Ctx) error {
	summary, err := s.analyticsService.Summary(c.UserContext(), c.Query("period", "all"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summary)
}

// snapshotRequest is the POST /api/analytics/followers/snapshot body.
// Counts come from whatever pulled them off the platform APIs.
type snapshotRequest struct {
	X        *int           `json:"x"`
	LinkedIn *int           `json:"linkedin"`
	Metadata map[string]any `json:"metadata"`
}

// SnapshotFollowers handles POST /api/analytics/followers/snapshot. One row
// per platform per day; posting twice the same day overwrites.
func (s *Server) SnapshotFollowers(c *fiber.Ctx) error {
	var req snapshotRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.X == nil && req.LinkedIn == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("At least one follower count is required"))
	}

	var metadata datatypes.JSON
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid metadata"))
		}
		metadata = raw
	}

	today := time.Now().Format("2006-01-02")
	results := fiber.Map{"date": today}
	var errs []string

	if req.X != nil {
		if err := s.snapshotRepo.UpsertDaily(c.UserContext(), models.ChannelX, today, *req.X, metadata); err != nil {
			errs = append(errs, "x: "+err.Error())
		} else {
			results["x"] = *req.X
		}
	}
	if req.LinkedIn != nil {
		if err := s.snapshotRepo.UpsertDaily(c.UserContext(), models.ChannelLinkedIn, today, *req.LinkedIn, metadata); err != nil {
			errs = append(errs, "linkedin: "+err.Error())
		} else {
			results["linkedin"] = *req.LinkedIn
		}
	}
	results["errors"] = errs
	return c.JSON(results)
}
