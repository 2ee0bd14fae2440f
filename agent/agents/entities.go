package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/callsense-ai/callsense/agent/contract"
	"github.com/callsense-ai/callsense/agent/state"
)

var productKeywords = []string{
	"credit card", "debit card", "checking account", "savings account",
	"mobile app", "website", "online banking", "loan", "mortgage",
}

var issueKeywords = []string{
	"refund", "chargeback", "login", "password", "declined", "blocked",
	"fee", "overcharged", "statement", "transfer", "fraud", "dispute",
}

var (
	cancelAccountRe = regexp.MustCompile(`\b(cancel\b.*account|close my account)`)
	escalationRe    = regexp.MustCompile(`supervisor|manager|third time|fourth time`)
)

func ruleBasedEntities(text string) *state.Entities {
	lower := strings.ToLower(text)

	var product, issue string
	for _, kw := range productKeywords {
		if strings.Contains(lower, kw) {
			product = kw
			break
		}
	}
	for _, kw := range issueKeywords {
		if strings.Contains(lower, kw) {
			issue = kw
			break
		}
	}

	priority := "normal"
	if cancelAccountRe.MatchString(lower) || escalationRe.MatchString(lower) {
		priority = "high"
	}

	return &state.Entities{
		Product:  product,
		Issue:    issue,
		Priority: priority,
	}
}

func buildEntitiesPrompt(text string) string {
	return fmt.Sprintf(`Transcript:
"""%s"""

Return a JSON object with keys:
- customer_profile: brief description, if available
- product: main product discussed
- issue: main problem
- context: important supplementary context
- priority: one of ['low','normal','high']
- other_tags: list of keywords

Your entire answer MUST be valid JSON.`, text)
}

// Entities extracts structured context from the transcript, preferring the
// language model and falling back to keyword heuristics. It publishes an
// entity_summary A2A message for downstream agents, which do not need to know
// about it in advance.
//
// Writes: Entities.
func Entities(ctx context.Context, st *state.CallState, caps contract.Capabilities) (*state.CallState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: call state is nil", contract.ErrValidation)
	}

	text := st.Transcript()
	var entities *state.Entities

	if caps.LLM != nil {
		st.ToolCalls++
		raw, err := caps.LLM.Complete(ctx, prompts.Entities, buildEntitiesPrompt(text))
		if err == nil {
			var parsed state.Entities
			if jsonErr := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); jsonErr == nil {
				st.ToolSuccesses++
				entities = &parsed
			} else {
				log.Debug().Err(jsonErr).Str("agent", AgentEntities).Msg("unparseable model response, using rule-based fallback")
			}
		} else {
			log.Debug().Err(err).Str("agent", AgentEntities).Msg("model unavailable, using rule-based fallback")
		}
	}

	if entities == nil {
		entities = ruleBasedEntities(text)
	}

	st.Entities = entities

	st.Send(AgentEntities, AgentSummarization, state.MsgEntitySummary, state.EntitySummary{
		Product:  entities.Product,
		Issue:    entities.Issue,
		Priority: entities.Priority,
		Tags:     entities.OtherTags,
	})

	st.StepCount++
	return st, nil
}
