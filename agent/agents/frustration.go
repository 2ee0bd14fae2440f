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

var highFrustrationTriggers = []string{
	"this is the third time",
	"this is the second time",
	"i am very frustrated",
	"unacceptable",
	"i want to cancel",
	"close my account",
	"worst experience",
}

var mediumFrustrationTriggers = []string{
	"not happy",
	"disappointed",
	"still not working",
	"nobody helped me",
	"already tried",
	"taking too long",
}

func ruleBasedFrustration(utterance string) state.FrustrationLevel {
	u := strings.ToLower(utterance)
	for _, t := range highFrustrationTriggers {
		if strings.Contains(u, t) {
			return state.FrustrationHigh
		}
	}
	for _, t := range mediumFrustrationTriggers {
		if strings.Contains(u, t) {
			return state.FrustrationMedium
		}
	}
	return state.FrustrationLow
}

func buildFrustrationPrompt(utterances []string) string {
	var b strings.Builder
	for i, u := range utterances {
		fmt.Fprintf(&b, "%d. %s\n", i+1, u)
	}

	return fmt.Sprintf(`You are analyzing a customer support call.

Below are the customer's utterances in order:

%s
For each line, label the customer's frustration level as one of:
- low
- medium
- high

Return a JSON array of objects with keys:
- index: integer
- utterance: text
- level: one of ["low","medium","high"]`, b.String())
}

func overallFrustration(timeline []state.FrustrationPoint) state.FrustrationLevel {
	overall := state.FrustrationLow
	for _, p := range timeline {
		switch p.Level {
		case state.FrustrationHigh:
			return state.FrustrationHigh
		case state.FrustrationMedium:
			overall = state.FrustrationMedium
		}
	}
	return overall
}

func validFrustrationLevel(l state.FrustrationLevel) bool {
	switch l {
	case state.FrustrationLow, state.FrustrationMedium, state.FrustrationHigh:
		return true
	}
	return false
}

// FrustrationLoop labels each utterance with a frustration level, then
// publishes a frustration_summary message for the pain-points agent.
//
// Writes: FrustrationTimeline.
func FrustrationLoop(ctx context.Context, st *state.CallState, caps contract.Capabilities) (*state.CallState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: call state is nil", contract.ErrValidation)
	}

	utterances := st.Utterances
	if len(utterances) == 0 {
		// No segmentation happened; treat the whole transcript as one turn.
		if text := st.Transcript(); text != "" {
			utterances = []string{text}
		} else {
			st.FrustrationTimeline = nil
			st.StepCount++
			return st, nil
		}
	}

	var timeline []state.FrustrationPoint

	if caps.LLM != nil {
		st.ToolCalls++
		raw, err := caps.LLM.Complete(ctx, prompts.Frustration, buildFrustrationPrompt(utterances))
		if err == nil {
			var parsed []state.FrustrationPoint
			if jsonErr := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); jsonErr == nil && len(parsed) > 0 {
				st.ToolSuccesses++
				for i := range parsed {
					if !validFrustrationLevel(parsed[i].Level) {
						parsed[i].Level = ruleBasedFrustration(parsed[i].Utterance)
					}
				}
				timeline = parsed
			} else {
				log.Debug().Str("agent", AgentFrustration).Msg("unparseable model response, using rule-based fallback")
			}
		} else {
			log.Debug().Err(err).Str("agent", AgentFrustration).Msg("model unavailable, using rule-based fallback")
		}
	}

	if len(timeline) == 0 {
		timeline = make([]state.FrustrationPoint, 0, len(utterances))
		for i, u := range utterances {
			timeline = append(timeline, state.FrustrationPoint{
				Index:     i + 1,
				Utterance: u,
				Level:     ruleBasedFrustration(u),
			})
		}
	}

	st.FrustrationTimeline = timeline
	st.StepCount++

	var highSegments []state.FrustrationPoint
	for _, p := range timeline {
		if p.Level == state.FrustrationHigh {
			highSegments = append(highSegments, p)
		}
	}

	st.Send(AgentFrustration, AgentPainPoints, state.MsgFrustrationSummary, state.FrustrationSummary{
		OverallLevel:   overallFrustration(timeline),
		HighSegments:   highSegments,
		TimelineLength: len(timeline),
	})

	return st, nil
}
