package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CronHealth handles GET /api/cron/generate-random, used by the scheduler
// to probe that the endpoint is reachable and the secret is accepted.
func (s *Server) CronHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"endpoint": "cron/generate-random",
	})
}

// CronGenerateRandom handles POST /api/cron/generate-random. The scheduler
// fires this hourly; generation itself decides whether the hour is inside
// the staffed review window. force=true overrides the window for manual runs.
func (s *Server) CronGenerateRandom(c *fiber.Ctx) error {
	result, err := s.generationService.Generate(c.UserContext(), c.QueryBool("force"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// CronPublishScheduled handles POST /api/cron/publish-scheduled, pushing out
// every draft whose scheduled time has passed.
func (s *Server) CronPublishScheduled(c *fiber.Ctx) error {
	result, err := s.draftService.PublishDue(c.UserContext(), time.Now())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   fmt.Sprintf("Published %d posts, %d failed", len(result.Published), len(result.Failed)),
		"published": result.Published,
		"failed":    result.Failed,
	})
}
