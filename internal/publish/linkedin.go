package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"amplify/internal/middleware"
	"amplify/internal/models"
	"amplify/internal/observability"
	"amplify/internal/repository"
)

// LinkedInPublisher publishes drafts through the organization's LinkedIn
// OAuth grant.
type LinkedInPublisher struct {
	baseURL   string
	snapshots repository.SnapshotRepository
	client    *http.Client
}

// NewLinkedInPublisher creates a LinkedIn publisher backed by the stored
// organization connection.
func NewLinkedInPublisher(baseURL string, snapshots repository.SnapshotRepository) *LinkedInPublisher {
	return &LinkedInPublisher{
		baseURL:   baseURL,
		snapshots: snapshots,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *LinkedInPublisher) Channel() string {
	return models.ChannelLinkedIn
}

// Publish routes the draft to the LinkedIn endpoint matching its action type.
func (p *LinkedInPublisher) Publish(ctx context.Context, draft *models.PostDraft) (*Result, error) {
	ctx, span := observability.TraceOutboundCall(ctx, "linkedin", draft.ActionType)
	defer span.End()

	conn, err := p.snapshots.GetConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("no LinkedIn connection available: %w", err)
	}
	if time.Now().After(conn.ExpiresAt) {
		return nil, fmt.Errorf("LinkedIn access token expired at %s", conn.ExpiresAt.Format(time.RFC3339))
	}

	author := "urn:li:organization:" + conn.OrganizationID

	var result *Result
	switch draft.ActionType {
	case models.ActionTypeComment:
		result, err = p.comment(ctx, conn.AccessToken, author, draft)
	case models.ActionTypeLike:
		result, err = p.like(ctx, conn.AccessToken, author, draft)
	case models.ActionTypeRepost:
		result, err = p.repost(ctx, conn.AccessToken, author, draft)
	default:
		result, err = p.share(ctx, conn.AccessToken, author, draft)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if touchErr := p.snapshots.TouchConnection(ctx, conn.ID); touchErr != nil {
		middleware.Logger.WarnContext(ctx, "failed to record LinkedIn connection use",
			"error", touchErr.Error())
	}
	return result, nil
}

func (p *LinkedInPublisher) share(ctx context.Context, token, author string, draft *models.PostDraft) (*Result, error) {
	body := map[string]interface{}{
		"author":         author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary": map[string]string{
					"text": draft.EffectiveContent(),
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	id, err := p.post(ctx, token, "/v2/ugcPosts", body)
	if err != nil {
		return nil, err
	}
	return &Result{
		ExternalID:  id,
		ExternalURL: "https://www.linkedin.com/feed/update/" + id,
	}, nil
}

func (p *LinkedInPublisher) repost(ctx context.Context, token, author string, draft *models.PostDraft) (*Result, error) {
	body := map[string]interface{}{
		"author":         author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary": map[string]string{
					"text": draft.EffectiveContent(),
				},
				"shareMediaCategory": "NONE",
			},
		},
		"responseContext": map[string]string{
			"parent": draft.TargetPostURN,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	id, err := p.post(ctx, token, "/v2/ugcPosts", body)
	if err != nil {
		return nil, err
	}
	return &Result{
		ExternalID:  id,
		ExternalURL: "https://www.linkedin.com/feed/update/" + id,
	}, nil
}

func (p *LinkedInPublisher) comment(ctx context.Context, token, author string, draft *models.PostDraft) (*Result, error) {
	body := map[string]interface{}{
		"actor": author,
		"message": map[string]string{
			"text": draft.EffectiveContent(),
		},
	}

	path := "/v2/socialActions/" + draft.TargetPostURN + "/comments"
	id, err := p.post(ctx, token, path, body)
	if err != nil {
		return nil, err
	}
	return &Result{
		ExternalID:  id,
		ExternalURL: "https://www.linkedin.com/feed/update/" + draft.TargetPostURN,
	}, nil
}

func (p *LinkedInPublisher) like(ctx context.Context, token, author string, draft *models.PostDraft) (*Result, error) {
	body := map[string]interface{}{
		"actor":  author,
		"object": draft.TargetPostURN,
	}

	path := "/v2/socialActions/" + draft.TargetPostURN + "/likes"
	if _, err := p.post(ctx, token, path, body); err != nil {
		return nil, err
	}
	// Likes have no identity of their own; reference the target.
	return &Result{
		ExternalID:  draft.TargetPostURN,
		ExternalURL: "https://www.linkedin.com/feed/update/" + draft.TargetPostURN,
	}, nil
}

// post sends a JSON request and returns the created entity id from either
// the X-RestLi-Id header or the response body.
func (p *LinkedInPublisher) post(ctx context.Context, token, path string, body interface{}) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("LinkedIn request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("LinkedIn API returned %d: %s", resp.StatusCode, string(raw))
	}

	if id := resp.Header.Get("X-RestLi-Id"); id != "" {
		return id, nil
	}
	var parsed struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &parsed)
	return parsed.ID, nil
}
