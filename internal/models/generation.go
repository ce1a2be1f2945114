package models

// GenerationCandidate is one model's entry in the LLM council.
type GenerationCandidate struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// GenerationWinner is the candidate the judge model picked.
type GenerationWinner struct {
	Source  string `json:"source"`
	Content string `json:"content"`
	Reason  string `json:"reason,omitempty"`
}

// GenerationJudge records which model judged the council and with what prompt.
type GenerationJudge struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// GenerationMetadata is stored on AI-generated drafts so reviewers can see
// the full council: every candidate, the winner, and the judge's reasoning.
type GenerationMetadata struct {
	Prompt             string                `json:"prompt"`
	Platform           string                `json:"platform"`
	InspirationContent string                `json:"inspiration_content"`
	ModelsUsed         []string              `json:"models_used"`
	Candidates         []GenerationCandidate `json:"candidates"`
	Winner             GenerationWinner      `json:"winner"`
	Judge              GenerationJudge       `json:"judge"`
	GeneratedAt        string                `json:"generated_at"`
	// Set when a reviewer promoted an alternate candidate over the
	// judge's pick.
	SelectedFromAlternate bool              `json:"selected_from_alternate,omitempty"`
	OriginalWinner        *GenerationWinner `json:"original_winner,omitempty"`
}

// LLMCouncilResponse is the wire shape returned by the council endpoint.
type LLMCouncilResponse struct {
	Content     string                `json:"content"`
	Source      string                `json:"source"`
	Reason      string                `json:"reason,omitempty"`
	Candidates  []GenerationCandidate `json:"candidates"`
	Prompt      string                `json:"prompt"`
	JudgePrompt string                `json:"judge_prompt"`
	ModelsUsed  []string              `json:"models_used"`
}
