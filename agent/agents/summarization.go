package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/callsense-ai/callsense/agent/contract"
	"github.com/callsense-ai/callsense/agent/state"
)

// EmptyTranscriptSummary is the sentinel written when there is no text to
// summarize. Empty input is a valid terminal state, not an error.
const EmptyTranscriptSummary = "No transcript content was available to summarize."

const fallbackSummaryWidth = 500

func buildSummaryPrompt(st *state.CallState, entitySummary state.EntitySummary) string {
	entitiesJSON, _ := json.MarshalIndent(st.Entities, "", "  ")
	summaryJSON, _ := json.MarshalIndent(entitySummary, "", "  ")

	return fmt.Sprintf(`Transcript:
"""%s"""

Extracted entities and context (if any):
%s

Entity summary from another agent:
%s

Write a concise, NEUTRAL summary of this call for an internal CRM note.

Requirements:
- 4-6 sentences
- Mention the customer's main issue and key context (prior attempts, deadlines, escalation, etc.)
- Mention the product or service if clear
- Capture the outcome (resolved vs unresolved) if it can be inferred
- Avoid copying long phrases verbatim; paraphrase instead.

Return plain text, no bullet points, no markdown.`, st.Transcript(), entitiesJSON, summaryJSON)
}

// shorten truncates text at a word boundary, appending an ellipsis placeholder.
func shorten(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= width {
		return text
	}
	const placeholder = "..."
	cut := width - len(placeholder)
	if idx := strings.LastIndex(text[:cut+1], " "); idx > 0 {
		cut = idx
	}
	return strings.TrimSpace(text[:cut]) + placeholder
}

func ruleBasedSummary(st *state.CallState) string {
	text := st.Transcript()
	if strings.TrimSpace(text) == "" {
		return EmptyTranscriptSummary
	}
	return shorten(text, fallbackSummaryWidth)
}

// Summarization writes a CRM-style summary of the call, consuming the latest
// entity_summary message when one was published.
//
// Writes: Summary.
func Summarization(ctx context.Context, st *state.CallState, caps contract.Capabilities) (*state.CallState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: call state is nil", contract.ErrValidation)
	}

	if st.Transcript() == "" {
		st.Summary = EmptyTranscriptSummary
		st.StepCount++
		return st, nil
	}

	var entitySummary state.EntitySummary
	if msg, ok := st.LastMessageFor(AgentSummarization, state.MsgEntitySummary); ok {
		if p, ok := msg.Payload.(state.EntitySummary); ok {
			entitySummary = p
		}
	}

	var summary string
	if caps.LLM != nil {
		st.ToolCalls++
		raw, err := caps.LLM.Complete(ctx, prompts.Summarization, buildSummaryPrompt(st, entitySummary))
		if err == nil && strings.TrimSpace(raw) != "" {
			st.ToolSuccesses++
			summary = strings.TrimSpace(raw)
		} else if err != nil {
			log.Debug().Err(err).Str("agent", AgentSummarization).Msg("model unavailable, using rule-based fallback")
		}
	}

	if summary == "" {
		summary = ruleBasedSummary(st)
	}

	st.Summary = summary
	st.StepCount++
	return st, nil
}
