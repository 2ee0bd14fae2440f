package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/callsense-ai/callsense/agent/contract"
	"github.com/callsense-ai/callsense/agent/eval"
	"github.com/callsense-ai/callsense/agent/state"
)

// DefaultEvalNote explains default scores when model evaluation was not used.
const DefaultEvalNote = "LLM evaluation not available; using default scores."

type llmScores struct {
	Faithfulness *float64 `json:"faithfulness_score"`
	Coverage     *float64 `json:"coverage_score"`
	Consistency  *float64 `json:"consistency_score"`
	Notes        string   `json:"notes"`
}

func buildEvalPrompt(st *state.CallState) string {
	entitiesJSON, _ := json.MarshalIndent(st.Entities, "", "  ")
	painPointsJSON, _ := json.MarshalIndent(st.PainPoints, "", "  ")
	actionsJSON, _ := json.MarshalIndent(st.RecommendedActions, "", "  ")

	return fmt.Sprintf(`You are evaluating the quality of an AI assistant's analysis of a customer support call.

Here is the original transcript:
"""%s"""

Here is the assistant's internal analysis:

Summary:
"""%s"""

Sentiment label: %s

Entities:
%s

Pain points:
%s

Recommended actions:
%s

Your task:
1. Rate the following on a 0.0-1.0 scale (floats):
   - faithfulness_score: Are the summary, pain points, and actions grounded in the transcript?
   - coverage_score: Do they cover the main issues / concerns the customer raises?
   - consistency_score: Are summary, sentiment, pain points, and actions mutually consistent?

2. Provide a short textual note explaining any major issues.

Return ONLY a JSON object with this schema:
{
  "faithfulness_score": 0.0,
  "coverage_score": 0.0,
  "consistency_score": 0.0,
  "notes": "short explanation"
}`, st.Transcript(), st.Summary, st.Sentiment, entitiesJSON, painPointsJSON, actionsJSON)
}

func defaultScores() llmScores {
	one := 1.0
	return llmScores{
		Faithfulness: &one,
		Coverage:     &one,
		Consistency:  &one,
		Notes:        DefaultEvalNote,
	}
}

// Evaluation scores the pipeline output (model-backed, defaulting to perfect
// scores with an explanatory note) and merges the basic observability metrics
// into CallState.Evaluation. The metrics are computed before this agent's own
// step increment, so evaluation.step_count covers the pipeline agents only.
//
// Writes: Evaluation.
func Evaluation(ctx context.Context, st *state.CallState, caps contract.Capabilities) (*state.CallState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: call state is nil", contract.ErrValidation)
	}

	scores := defaultScores()

	if caps.LLM != nil {
		st.ToolCalls++
		raw, err := caps.LLM.Complete(ctx, prompts.Evaluation, buildEvalPrompt(st))
		if err == nil {
			var parsed llmScores
			if jsonErr := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); jsonErr == nil {
				st.ToolSuccesses++
				defaults := defaultScores()
				if parsed.Faithfulness == nil {
					parsed.Faithfulness = defaults.Faithfulness
				}
				if parsed.Coverage == nil {
					parsed.Coverage = defaults.Coverage
				}
				if parsed.Consistency == nil {
					parsed.Consistency = defaults.Consistency
				}
				scores = parsed
			} else {
				log.Debug().Err(jsonErr).Str("agent", AgentEvaluation).Msg("unparseable model response, using default scores")
			}
		} else {
			log.Debug().Err(err).Str("agent", AgentEvaluation).Msg("model unavailable, using default scores")
		}
	}

	ev := eval.ComputeBasicEval(st, time.Now())
	ev.Faithfulness = scores.Faithfulness
	ev.Coverage = scores.Coverage
	ev.Consistency = scores.Consistency
	ev.Notes = scores.Notes

	st.Evaluation = &ev
	st.StepCount++
	return st, nil
}
