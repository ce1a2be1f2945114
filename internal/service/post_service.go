package service

import (
	"context"
	"errors"
	"strings"

	"amplify/internal/models"
	"amplify/internal/repository"

	"gorm.io/gorm"
)

// PostService owns campaign posts and the published archive.
type PostService struct {
	posts     repository.PostRepository
	campaigns repository.CampaignRepository
	users     repository.UserRepository
}

// NewPostService returns a new PostService.
func NewPostService(posts repository.PostRepository, campaigns repository.CampaignRepository, users repository.UserRepository) *PostService {
	return &PostService{posts: posts, campaigns: campaigns, users: users}
}

// ComposePostInput is an employee-composed campaign post.
type ComposePostInput struct {
	CampaignID uint
	Content    string
	Channel    string
	ImageURL   string
}

// Compose creates an employee-composed post in an active campaign. The post
// enters review immediately.
func (s *PostService) Compose(ctx context.Context, actor Actor, in ComposePostInput) (*models.Post, error) {
	if in.CampaignID == 0 || strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Campaign ID and content are required")
	}

	if _, err := s.campaigns.GetActiveByID(ctx, in.CampaignID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Campaign not found")
		}
		return nil, models.NewInternalError(err)
	}

	user, err := s.users.GetByEmail(ctx, actor.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User not found")
		}
		return nil, models.NewInternalError(err)
	}

	post := &models.Post{
		CampaignID: in.CampaignID,
		AuthorID:   user.ID,
		Content:    strings.TrimSpace(in.Content),
		Channel:    in.Channel,
		Status:     models.DraftStatusPendingReview,
		SourceType: models.SourceTypeEmployeeComposed,
		ImageURL:   in.ImageURL,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// DeleteComposed removes an employee-composed post. Only the author may
// delete, and AI-generated campaign posts are managed by the pipeline.
func (s *PostService) DeleteComposed(ctx context.Context, actor Actor, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post not found")
		}
		return models.NewInternalError(err)
	}

	if post.Author == nil || !strings.EqualFold(post.Author.Email, actor.Email) {
		return models.NewForbiddenError("Not authorized to delete this post")
	}
	if post.SourceType != models.SourceTypeEmployeeComposed {
		return models.NewForbiddenError("Can only delete your own composed posts")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteArchived removes a post from the published archive. Admin only; the
// handler enforces that.
func (s *PostService) DeleteArchived(ctx context.Context, postID uint) error {
	if _, err := s.posts.GetSocialPostByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post not found")
		}
		return models.NewInternalError(err)
	}
	if err := s.posts.DeleteSocialPost(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
