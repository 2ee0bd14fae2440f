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

// FallbackPainPoint is the sentinel used when no pain point can be derived.
const FallbackPainPoint = "unclear primary pain point"

func ruleBasedPainPoints(st *state.CallState, frustration state.FrustrationSummary) []string {
	text := strings.ToLower(st.Transcript())
	var painPoints []string

	if st.Entities != nil && st.Entities.Issue != "" {
		if st.Entities.Product != "" {
			painPoints = append(painPoints, fmt.Sprintf("%s related to %s", st.Entities.Issue, st.Entities.Product))
		} else {
			painPoints = append(painPoints, st.Entities.Issue)
		}
	}

	if strings.Contains(text, "refund") || strings.Contains(text, "chargeback") {
		painPoints = append(painPoints, "refund or chargeback delay")
	}
	if strings.Contains(text, "login") || strings.Contains(text, "password") {
		painPoints = append(painPoints, "login or authentication issues")
	}
	if strings.Contains(text, "fee") || strings.Contains(text, "overcharged") {
		painPoints = append(painPoints, "unexpected fees or overcharging")
	}

	if frustration.OverallLevel == state.FrustrationHigh {
		painPoints = append(painPoints, "customer is highly frustrated after multiple attempts")
	}

	deduped := dedupe(painPoints)
	if len(deduped) == 0 {
		deduped = []string{FallbackPainPoint}
	}
	return deduped
}

func buildPainPointPrompt(st *state.CallState, frustration state.FrustrationSummary) string {
	entitiesJSON, _ := json.MarshalIndent(st.Entities, "", "  ")
	frustrationJSON, _ := json.MarshalIndent(frustration, "", "  ")

	return fmt.Sprintf(`Transcript:
"""%s"""

Internal summary:
"""%s"""

Entities/context:
%s

Frustration summary from another agent:
%s

Task:
- Identify 2-5 distinct customer pain points.
- Each pain point should be a short phrase (5-12 words).
- Do not repeat the same idea with different wording.

Return a JSON array of strings.`, st.Transcript(), st.Summary, entitiesJSON, frustrationJSON)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// parseStringList decodes a JSON array of strings, dropping blanks.
func parseStringList(raw string) ([]string, error) {
	var parsed []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrSchemaViolation, err)
	}
	var out []string
	for _, s := range parsed {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// PainPoints distills the customer's distinct pain points, consuming the
// latest frustration_summary message left by the frustration loop agent.
//
// Writes: PainPoints.
func PainPoints(ctx context.Context, st *state.CallState, caps contract.Capabilities) (*state.CallState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: call state is nil", contract.ErrValidation)
	}

	var frustration state.FrustrationSummary
	if msg, ok := st.LastMessageFor(AgentPainPoints, state.MsgFrustrationSummary); ok {
		if p, ok := msg.Payload.(state.FrustrationSummary); ok {
			frustration = p
		}
	}

	var painPoints []string
	if caps.LLM != nil {
		st.ToolCalls++
		raw, err := caps.LLM.Complete(ctx, prompts.PainPoints, buildPainPointPrompt(st, frustration))
		if err == nil {
			parsed, parseErr := parseStringList(raw)
			if parseErr == nil && len(parsed) > 0 {
				st.ToolSuccesses++
				painPoints = parsed
			} else {
				log.Debug().Str("agent", AgentPainPoints).Msg("unparseable model response, using rule-based fallback")
			}
		} else {
			log.Debug().Err(err).Str("agent", AgentPainPoints).Msg("model unavailable, using rule-based fallback")
		}
	}

	if len(painPoints) == 0 {
		painPoints = ruleBasedPainPoints(st, frustration)
	}

	st.PainPoints = painPoints
	st.StepCount++
	return st, nil
}
