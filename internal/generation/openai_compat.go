package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"amplify/internal/models"
	"amplify/internal/observability"
)

// OpenAICompatGenerator runs the council against any OpenAI-compatible
// /v1/chat/completions endpoint. Works with vLLM, LiteLLM, OpenRouter and
// self-hosted models.
type OpenAICompatGenerator struct {
	baseURL    string
	apiKey     string
	models     []string
	judgeModel string
	httpClient *http.Client
}

// NewOpenAICompatGenerator builds a council generator. councilModels are the
// candidate writers; the last one doubles as the judge when no dedicated
// judge model is given.
func NewOpenAICompatGenerator(baseURL, apiKey string, councilModels ...string) *OpenAICompatGenerator {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if len(councilModels) == 0 {
		councilModels = []string{"gpt-4o"}
	}
	return &OpenAICompatGenerator{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(apiKey),
		models:     councilModels,
		judgeModel: councilModels[len(councilModels)-1],
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Generate asks each council model for a candidate, then has the judge pick
// a winner. A single-model council skips the judging round.
func (g *OpenAICompatGenerator) Generate(ctx context.Context, platform, inspiration string) (*models.LLMCouncilResponse, error) {
	ctx, span := observability.TraceOutboundCall(ctx, "llm", "council")
	defer span.End()

	prompt := BuildPrompt(platform, inspiration)

	candidates := make([]models.GenerationCandidate, 0, len(g.models))
	for _, model := range g.models {
		text, err := g.complete(ctx, model, "", prompt)
		if err != nil {
			// One failed writer does not sink the council.
			span.RecordError(err)
			continue
		}
		candidates = append(candidates, models.GenerationCandidate{Source: model, Content: text})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("all council models failed")
	}

	resp := &models.LLMCouncilResponse{
		Candidates: candidates,
		Prompt:     prompt,
		ModelsUsed: g.models,
	}

	if len(candidates) == 1 {
		resp.Content = candidates[0].Content
		resp.Source = candidates[0].Source
		return resp, nil
	}

	judgePrompt := JudgePrompt(platform, len(candidates))
	resp.JudgePrompt = judgePrompt

	var sb strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&sb, "Candidate %d:\n%s\n\n", i, c.Content)
	}

	verdict, err := g.complete(ctx, g.judgeModel, judgePrompt, sb.String())
	if err != nil {
		// Judge failure falls back to the first candidate.
		span.RecordError(err)
		resp.Content = candidates[0].Content
		resp.Source = candidates[0].Source
		return resp, nil
	}

	idx, reason := parseVerdict(verdict, len(candidates))
	resp.Content = candidates[idx].Content
	resp.Source = candidates[idx].Source
	resp.Reason = reason
	return resp, nil
}

// parseVerdict extracts the winner index and reason from the judge reply,
// tolerating replies that wrap the JSON in prose.
func parseVerdict(verdict string, count int) (int, string) {
	start := strings.Index(verdict, "{")
	end := strings.LastIndex(verdict, "}")
	if start >= 0 && end > start {
		var parsed struct {
			Index  json.Number `json:"index"`
			Reason string      `json:"reason"`
		}
		if err := json.Unmarshal([]byte(verdict[start:end+1]), &parsed); err == nil {
			if i, err := strconv.Atoi(parsed.Index.String()); err == nil && i >= 0 && i < count {
				return i, parsed.Reason
			}
		}
	}
	return 0, ""
}

func (g *OpenAICompatGenerator) complete(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	messages := make([]oaiMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, oaiMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, oaiMessage{Role: "user", Content: userPrompt})

	body, err := json.Marshal(oaiChatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", err
	}

	url := g.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp oaiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return "", fmt.Errorf("chat completion api error: %s", errResp.Error.Message)
		}
		return "", fmt.Errorf("chat completion api error: %s", resp.Status)
	}

	var chatResp oaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("chat completion decode: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from chat completion api")
	}
	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty response from chat completion api")
	}
	return text, nil
}

// OpenAI-compatible request/response types.

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiChatRequest struct {
	Model    string       `json:"model"`
	Messages []oaiMessage `json:"messages"`
}

type oaiChatResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
}

type oaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
