package server

import (
	"strconv"
	"strings"
	"time"

	"amplify/internal/cache"
	"amplify/internal/models"
	"amplify/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// ListCampaigns handles GET /api/campaigns, cache-aside over the campaign
// list with computed post counts.
func (s *Server) ListCampaigns(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if c.Query("type") == models.CampaignTypeRandom {
		campaigns, err := s.campaignRepo.ListActiveByType(ctx, models.CampaignTypeRandom)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		return c.JSON(fiber.Map{"campaigns": campaigns})
	}

	var campaigns []*models.Campaign
	err := cache.Aside(ctx, cache.CampaignListKey, &campaigns, cache.CampaignListTTL, func() error {
		var err error
		campaigns, err = s.campaignRepo.List(ctx)
		return err
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"campaigns": campaigns})
}

// campaignRequest is the POST/PUT campaign body.
type campaignRequest struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Status       string         `json:"status"`
	Type         string         `json:"type"`
	IsActive     *bool          `json:"isActive"`
	StartDate    *time.Time     `json:"startDate"`
	EndDate      *time.Time     `json:"endDate"`
	SourceConfig datatypes.JSON `json:"sourceConfig"`
}

// CreateCampaign handles POST /api/campaigns
func (s *Server) CreateCampaign(c *fiber.Ctx) error {
	var req campaignRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	campaign := &models.Campaign{
		Name:         req.Name,
		Description:  req.Description,
		Status:       req.Status,
		Type:         req.Type,
		IsActive:     true,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		SourceConfig: req.SourceConfig,
	}
	if campaign.Status == "" {
		campaign.Status = models.CampaignStatusActive
	}
	if campaign.Type == "" {
		campaign.Type = models.CampaignTypeCurated
	}
	if req.IsActive != nil {
		campaign.IsActive = *req.IsActive
	}

	if err := s.campaignRepo.Create(c.UserContext(), campaign); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"campaign": campaign})
}

// UpdateCampaign handles PUT /api/campaigns/:id
func (s *Server) UpdateCampaign(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	campaign, err := s.campaignRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Campaign not found"))
	}

	var req campaignRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Name != "" {
		campaign.Name = req.Name
	}
	if req.Description != "" {
		campaign.Description = req.Description
	}
	if req.Status != "" {
		campaign.Status = req.Status
	}
	if req.IsActive != nil {
		campaign.IsActive = *req.IsActive
	}
	if req.StartDate != nil {
		campaign.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		campaign.EndDate = req.EndDate
	}
	if len(req.SourceConfig) > 0 {
		campaign.SourceConfig = req.SourceConfig
	}

	if err := s.campaignRepo.Update(c.UserContext(), campaign); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"campaign": campaign})
}

// looseID accepts both numeric and string-encoded IDs in JSON bodies.
// Anything non-numeric decodes to zero and fails required-field checks.
type looseID uint

func (id *looseID) UnmarshalJSON(b []byte) error {
	n, err := strconv.ParseUint(strings.Trim(string(b), `"`), 10, 64)
	if err != nil {
		*id = 0
		return nil
	}
	*id = looseID(n)
	return nil
}

// composePostRequest is the POST /api/campaign/posts body.
type composePostRequest struct {
	CampaignID looseID `json:"campaignId"`
	Content    string  `json:"content"`
	Channel    string  `json:"channel"`
	ImageURL   string  `json:"imageUrl"`
}

// ComposeCampaignPost handles POST /api/campaign/posts
func (s *Server) ComposeCampaignPost(c *fiber.Ctx) error {
	var req composePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Compose(c.UserContext(), currentActor(c), service.ComposePostInput{
		CampaignID: uint(req.CampaignID),
		Content:    req.Content,
		Channel:    req.Channel,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

// DeleteCampaignPost handles DELETE /api/campaign/posts/:postId
func (s *Server) DeleteCampaignPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.postService.DeleteComposed(c.UserContext(), currentActor(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
