// Package generation produces AI draft content from archive inspiration.
package generation

import (
	"context"
	"fmt"

	"amplify/internal/models"
)

// ContentGenerator runs the model council for one inspiration post and
// returns the winning candidate plus the full council record.
type ContentGenerator interface {
	Generate(ctx context.Context, platform, inspiration string) (*models.LLMCouncilResponse, error)
}

// BuildPrompt renders the generation prompt for one inspiration post.
func BuildPrompt(platform, inspiration string) string {
	return fmt.Sprintf(
		"You are a social media copywriter for a software company. "+
			"Write one original %s post inspired by the themes and tone of the post below. "+
			"Do not copy phrases from it. Keep it under 280 characters for x, under 1300 for linkedin. "+
			"Reply with the post text only.\n\nInspiration:\n%s",
		platform, inspiration)
}

// JudgePrompt renders the prompt used to pick a winner among candidates.
func JudgePrompt(platform string, count int) string {
	return fmt.Sprintf(
		"You are reviewing %d candidate %s posts. Pick the strongest one for engagement "+
			"and clarity, and explain your choice in one sentence. "+
			"Reply as JSON: {\"index\": <n>, \"reason\": \"...\"}.",
		count, platform)
}
