package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/entities.txt
	entitiesRaw string

	//go:embed template/summarization.txt
	summarizationRaw string

	//go:embed template/sentiment.txt
	sentimentRaw string

	//go:embed template/frustration.txt
	frustrationRaw string

	//go:embed template/pain_points.txt
	painPointsRaw string

	//go:embed template/actions.txt
	actionsRaw string

	//go:embed template/evaluation.txt
	evaluationRaw string
)

// PromptSet holds the per-agent system prompts.
type PromptSet struct {
	Entities      string
	Summarization string
	Sentiment     string
	Frustration   string
	PainPoints    string
	Actions       string
	Evaluation    string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Entities:      strings.TrimSpace(entitiesRaw),
		Summarization: strings.TrimSpace(summarizationRaw),
		Sentiment:     strings.TrimSpace(sentimentRaw),
		Frustration:   strings.TrimSpace(frustrationRaw),
		PainPoints:    strings.TrimSpace(painPointsRaw),
		Actions:       strings.TrimSpace(actionsRaw),
		Evaluation:    strings.TrimSpace(evaluationRaw),
	}
}
