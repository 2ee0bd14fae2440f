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

// DefaultAction is used when no targeted action can be derived.
const DefaultAction = "Follow standard support procedure and update CRM with call summary."

func ruleBasedActions(st *state.CallState, sentiment string) []string {
	if sentiment == "" {
		sentiment = "neutral"
	}

	var actions []string
	for _, p := range st.PainPoints {
		pl := strings.ToLower(p)
		switch {
		case strings.Contains(pl, "refund") || strings.Contains(pl, "chargeback"):
			actions = append(actions,
				"Check refund/chargeback status and expedite if delayed.",
				"Provide clear timeline and confirmation email for the refund.")
		case strings.Contains(pl, "login") || strings.Contains(pl, "authentication"):
			actions = append(actions,
				"Walk customer through login reset or credential recovery.",
				"Check for account lock or security flags and resolve.")
		case strings.Contains(pl, "fee") || strings.Contains(pl, "overcharged"):
			actions = append(actions, "Review recent charges and waive fees if misapplied.")
		case strings.Contains(pl, "repeated unresolved contacts"):
			actions = append(actions, "Escalate to Tier-2 support with full case context.")
		default:
			actions = append(actions, fmt.Sprintf("Investigate and follow standard playbook for: %s", p))
		}
	}

	if sentiment == "very_negative" || sentiment == "negative" {
		actions = append(actions, "Offer apology and consider goodwill credit or compensation.")
	}

	deduped := dedupe(actions)
	if len(deduped) == 0 {
		deduped = []string{DefaultAction}
	}
	return deduped
}

func buildActionsPrompt(st *state.CallState, sentiment string) string {
	entitiesJSON, _ := json.MarshalIndent(st.Entities, "", "  ")
	painPointsJSON, _ := json.Marshal(st.PainPoints)

	return fmt.Sprintf(`Based on the call information below, propose concrete next best actions
for the agent or operations team.

Summary:
"""%s"""

Sentiment label: %s

Pain points:
%s

Entities/context:
%s

Guidelines:
- Suggest 3-6 specific, actionable steps.
- Focus on steps that resolve the customer's issue and prevent future repeat calls.
- Include escalation only when necessary.
- Keep each action as one clear sentence.

Return a JSON array of strings, e.g.:
[
  "Expedite refund processing and send confirmation email to the customer.",
  "Open a ticket with the mobile app team to investigate repeated login failures."
]`, st.Summary, sentiment, painPointsJSON, entitiesJSON)
}

// Actions recommends next best actions from the pain points, the sentiment
// signal left by the sentiment agent, and the summary.
//
// Writes: RecommendedActions.
func Actions(ctx context.Context, st *state.CallState, caps contract.Capabilities) (*state.CallState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: call state is nil", contract.ErrValidation)
	}

	sentiment := st.Sentiment
	if msg, ok := st.LastMessageFor(AgentActions, state.MsgSentimentSignal); ok {
		if p, ok := msg.Payload.(state.SentimentSignal); ok && p.Sentiment != "" {
			sentiment = p.Sentiment
		}
	}

	var actions []string
	if caps.LLM != nil {
		st.ToolCalls++
		raw, err := caps.LLM.Complete(ctx, prompts.Actions, buildActionsPrompt(st, sentiment))
		if err == nil {
			parsed, parseErr := parseStringList(raw)
			if parseErr == nil && len(parsed) > 0 {
				st.ToolSuccesses++
				actions = parsed
			} else {
				log.Debug().Str("agent", AgentActions).Msg("unparseable model response, using rule-based fallback")
			}
		} else {
			log.Debug().Err(err).Str("agent", AgentActions).Msg("model unavailable, using rule-based fallback")
		}
	}

	if len(actions) == 0 {
		actions = ruleBasedActions(st, sentiment)
	}

	st.RecommendedActions = actions
	st.StepCount++
	return st, nil
}
