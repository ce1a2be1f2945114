package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"amplify/internal/models"
	"amplify/internal/observability"
)

// XPublisher publishes drafts to X through the v2 API with an app bearer
// token.
type XPublisher struct {
	baseURL string
	bearer  string
	client  *http.Client
}

// NewXPublisher creates an X publisher.
func NewXPublisher(baseURL, bearer string) *XPublisher {
	return &XPublisher{
		baseURL: baseURL,
		bearer:  bearer,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *XPublisher) Channel() string {
	return models.ChannelX
}

func (p *XPublisher) Publish(ctx context.Context, draft *models.PostDraft) (*Result, error) {
	ctx, span := observability.TraceOutboundCall(ctx, "x", draft.ActionType)
	defer span.End()

	if p.bearer == "" {
		return nil, fmt.Errorf("X publishing is not configured")
	}

	body := map[string]interface{}{
		"text": draft.EffectiveContent(),
	}
	switch draft.ActionType {
	case models.ActionTypeComment:
		body["reply"] = map[string]string{"in_reply_to_tweet_id": draft.TargetPostURN}
	case models.ActionTypeRepost:
		body = map[string]interface{}{
			"text":           draft.EffectiveContent(),
			"quote_tweet_id": draft.TargetPostURN,
		}
	case models.ActionTypeLike:
		return nil, fmt.Errorf("likes are not supported on X")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/2/tweets", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.bearer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("X request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("X API returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unexpected X API response: %w", err)
	}

	return &Result{
		ExternalID:  parsed.Data.ID,
		ExternalURL: "https://x.com/i/status/" + parsed.Data.ID,
	}, nil
}
