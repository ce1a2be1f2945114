package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"amplify/internal/generation"
	"amplify/internal/middleware"
	"amplify/internal/models"
	"amplify/internal/notifications"
	"amplify/internal/repository"
)

// AIAuthorName labels drafts produced by the pipeline.
const AIAuthorName = "AI Generator"

// AIAlternateAuthorName labels drafts promoted from an alternate candidate.
const AIAlternateAuthorName = "AI Generator (Alternate)"

// Generation runs only during staffed hours so fresh drafts land while
// reviewers are around to proofread them.
const (
	generationWindowStart = 4  // 4 AM
	generationWindowEnd   = 18 // 6 PM, exclusive
)

// GenerationService runs the automated draft pipeline for random campaigns.
type GenerationService struct {
	campaigns repository.CampaignRepository
	posts     repository.PostRepository
	drafts    repository.DraftRepository
	generator generation.ContentGenerator
	notifier  *notifications.Notifier
	loc       *time.Location
}

// NewGenerationService returns a new GenerationService.
func NewGenerationService(
	campaigns repository.CampaignRepository,
	posts repository.PostRepository,
	drafts repository.DraftRepository,
	generator generation.ContentGenerator,
	notifier *notifications.Notifier,
) *GenerationService {
	loc, err := time.LoadLocation(models.DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &GenerationService{
		campaigns: campaigns,
		posts:     posts,
		drafts:    drafts,
		generator: generator,
		notifier:  notifier,
		loc:       loc,
	}
}

// GenerateResult summarizes one generation run.
type GenerateResult struct {
	Skipped   bool   `json:"skipped,omitempty"`
	Message   string `json:"message,omitempty"`
	Generated int    `json:"generated"`
	Campaigns int    `json:"campaigns"`
}

// inWindow reports whether t falls inside staffed hours, Eastern time.
func (s *GenerationService) inWindow(t time.Time) bool {
	h := t.In(s.loc).Hour()
	return h >= generationWindowStart && h < generationWindowEnd
}

// Generate produces drafts for every active random campaign. Outside the
// business-hours window the run is skipped unless forced.
func (s *GenerationService) Generate(ctx context.Context, force bool) (*GenerateResult, error) {
	if !force && !s.inWindow(time.Now()) {
		return &GenerateResult{
			Skipped: true,
			Message: "Generation paused - outside business hours (4 AM - 6 PM EST)",
		}, nil
	}

	campaigns, err := s.campaigns.ListActiveByType(ctx, models.CampaignTypeRandom)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	result := &GenerateResult{Campaigns: len(campaigns)}
	for _, campaign := range campaigns {
		cfg := campaign.ParseSourceConfig()
		inspirations, err := s.posts.RandomInspiration(ctx, cfg.SourcePlatform, cfg.PostsLimit, cfg.PostsPerRun)
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "inspiration sampling failed",
				"campaign_id", campaign.ID, "error", err.Error())
			continue
		}

		for _, inspiration := range inspirations {
			draft, err := s.generateOne(ctx, campaign, cfg.SourcePlatform, inspiration)
			if err != nil {
				middleware.Logger.ErrorContext(ctx, "draft generation failed",
					"campaign_id", campaign.ID, "inspiration_id", inspiration.ID,
					"error", err.Error())
				continue
			}
			result.Generated++
			middleware.Logger.InfoContext(ctx, "draft generated",
				"campaign_id", campaign.ID, "draft_id", draft.ID)
		}
	}
	return result, nil
}

func (s *GenerationService) generateOne(ctx context.Context, campaign *models.Campaign, platform string, inspiration *models.SocialPost) (*models.PostDraft, error) {
	council, err := s.generator.Generate(ctx, platform, inspiration.Content)
	if err != nil {
		return nil, err
	}

	metadata := models.GenerationMetadata{
		Prompt:             council.Prompt,
		Platform:           platform,
		InspirationContent: inspiration.Content,
		ModelsUsed:         council.ModelsUsed,
		Candidates:         council.Candidates,
		Winner: models.GenerationWinner{
			Source:  council.Source,
			Content: council.Content,
			Reason:  council.Reason,
		},
		Judge: models.GenerationJudge{
			Model:  council.Source,
			Prompt: council.JudgePrompt,
		},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}

	draft := &models.PostDraft{
		Content:            council.Content,
		Channel:            platform,
		AuthorName:         AIAuthorName,
		AuthorEmail:        aiGeneratorEmail,
		Route:              models.DraftRouteProofreading,
		Status:             models.DraftStatusPendingReview,
		ActionType:         models.ActionTypePost,
		CampaignID:         &campaign.ID,
		InspirationPostID:  &inspiration.ID,
		GenerationMetadata: metaJSON,
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// aiGeneratorEmail is the synthetic author on pipeline drafts, so
// author-bound review checks have something to match against.
const aiGeneratorEmail = "ai-generator@system.local"

// Feed returns every draft belonging to an active random campaign, newest
// first, with inspiration and edit history attached.
func (s *GenerationService) Feed(ctx context.Context) ([]*models.PostDraft, error) {
	campaigns, err := s.campaigns.ListActiveByType(ctx, models.CampaignTypeRandom)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	ids := make([]uint, 0, len(campaigns))
	for _, c := range campaigns {
		ids = append(ids, c.ID)
	}
	drafts, err := s.drafts.ListByCampaignIDs(ctx, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return drafts, nil
}

// actionableStatuses are the statuses a reviewer may act on from the feed.
var actionableStatuses = []string{
	models.DraftStatusPendingReview,
	models.DraftStatusApproved,
	models.DraftStatusDraft,
}

func actionable(status string) bool {
	for _, s := range actionableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Act routes a generated draft onward: into the proofreading queue, straight
// to publication, or onto the schedule.
func (s *GenerationService) Act(ctx context.Context, draftSvc *DraftService, id uint, action string, when *time.Time, timezone string) (*models.PostDraft, error) {
	switch action {
	case "proofreading", "publish", "schedule":
	default:
		return nil, models.NewValidationError("Invalid action")
	}

	draft, err := draftSvc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actionable(draft.Status) {
		return nil, models.NewValidationError("Cannot action this post")
	}

	switch action {
	case "proofreading":
		if err := s.drafts.Updates(ctx, id, map[string]interface{}{
			"route":  models.DraftRouteProofreading,
			"status": models.DraftStatusPendingReview,
		}); err != nil {
			return nil, models.NewInternalError(err)
		}
		return draftSvc.Get(ctx, id)
	case "schedule":
		if when == nil {
			return nil, models.NewValidationError("Scheduled time is required")
		}
		return draftSvc.Schedule(ctx, id, *when, timezone)
	default: // publish
		// Publishing needs an approved draft; the feed action implies
		// reviewer sign-off.
		if draft.Status == models.DraftStatusPendingReview || draft.Status == models.DraftStatusDraft {
			if _, err := s.drafts.UpdateStatusIf(ctx, id,
				[]string{models.DraftStatusPendingReview, models.DraftStatusDraft},
				map[string]interface{}{"status": models.DraftStatusApproved}); err != nil {
				return nil, models.NewInternalError(err)
			}
		}
		return draftSvc.Publish(ctx, id)
	}
}

// PromoteCandidate creates a new pipeline draft from an alternate council
// candidate that a reviewer preferred over the judge's pick.
func (s *GenerationService) PromoteCandidate(ctx context.Context, sourceDraftID uint, content, source string) (*models.PostDraft, error) {
	if strings.TrimSpace(content) == "" || strings.TrimSpace(source) == "" {
		return nil, models.NewValidationError("Missing required fields")
	}

	original, err := s.drafts.GetByID(ctx, sourceDraftID)
	if err != nil {
		return nil, models.NewNotFoundError("Draft not found")
	}

	var metadata models.GenerationMetadata
	if len(original.GenerationMetadata) > 0 {
		_ = json.Unmarshal(original.GenerationMetadata, &metadata)
	}
	originalWinner := metadata.Winner
	metadata.SelectedFromAlternate = true
	metadata.OriginalWinner = &originalWinner
	metadata.Winner = models.GenerationWinner{Source: source, Content: content}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	draft := &models.PostDraft{
		Content:            content,
		Channel:            original.Channel,
		AuthorName:         AIAlternateAuthorName,
		AuthorEmail:        original.AuthorEmail,
		Route:              models.DraftRouteProofreading,
		Status:             models.DraftStatusPendingReview,
		ActionType:         models.ActionTypePost,
		CampaignID:         original.CampaignID,
		InspirationPostID:  original.InspirationPostID,
		GenerationMetadata: metaJSON,
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, models.NewInternalError(err)
	}
	return draft, nil
}
