package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/callsense-ai/callsense/agent/contract"
	"github.com/callsense-ai/callsense/agent/state"
)

// SentimentUnknown is the label for calls whose sentiment cannot be judged.
const SentimentUnknown = "unknown"

var allowedSentiments = map[string]struct{}{
	"very_negative": {},
	"negative":      {},
	"neutral":       {},
	"positive":      {},
	"very_positive": {},
	"mixed":         {},
}

var negativeHints = []string{
	"angry", "frustrated", "upset", "mad", "cancel", "close my account",
	"this is the third time", "this is the second time", "unacceptable",
	"disappointed", "complaint", "not happy", "terrible", "awful", "worst",
}

var positiveHints = []string{
	"thank you", "thanks a lot", "appreciate", "great", "awesome",
	"helpful", "resolved", "perfect", "excellent",
}

// ruleBasedSentiment is a lightweight hint-counting classifier used as a
// safety net when the model is unavailable.
func ruleBasedSentiment(text string) string {
	if text == "" {
		return SentimentUnknown
	}

	t := strings.ToLower(text)
	var negHits, posHits int
	for _, w := range negativeHints {
		if strings.Contains(t, w) {
			negHits++
		}
	}
	for _, w := range positiveHints {
		if strings.Contains(t, w) {
			posHits++
		}
	}

	switch {
	case negHits > posHits && negHits >= 2:
		return "very_negative"
	case negHits > posHits:
		return "negative"
	case posHits > negHits && posHits >= 2:
		return "very_positive"
	case posHits > negHits:
		return "positive"
	case posHits > 0 && negHits > 0:
		return "mixed"
	}
	return "neutral"
}

func buildSentimentPrompt(st *state.CallState) string {
	return fmt.Sprintf(`You classify the overall customer sentiment for a support call.

Transcript:
"""%s"""

Summary:
"""%s"""

Valid labels:
- very_negative
- negative
- neutral
- positive
- very_positive
- mixed

Return ONLY the label.`, st.Transcript(), st.Summary)
}

var labelCharsRe = regexp.MustCompile(`[^a-z_]`)

// normalizeSentimentLabel maps model output onto an allowed label; anything
// else reports failure so the caller engages the fallback.
func normalizeSentimentLabel(label string) (string, bool) {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) == 0 {
		return "", false
	}
	first := labelCharsRe.ReplaceAllString(fields[0], "")
	if _, ok := allowedSentiments[first]; !ok {
		return "", false
	}
	return first, true
}

// Sentiment classifies the overall customer sentiment and broadcasts it as a
// sentiment_signal message. An empty transcript short-circuits to "unknown".
//
// Writes: Sentiment.
func Sentiment(ctx context.Context, st *state.CallState, caps contract.Capabilities) (*state.CallState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: call state is nil", contract.ErrValidation)
	}

	text := st.Transcript()
	if strings.TrimSpace(text) == "" {
		st.Sentiment = SentimentUnknown
		st.StepCount++
		return st, nil
	}

	var label string
	if caps.LLM != nil {
		st.ToolCalls++
		raw, err := caps.LLM.Complete(ctx, prompts.Sentiment, buildSentimentPrompt(st))
		if err == nil {
			if normalized, ok := normalizeSentimentLabel(raw); ok {
				st.ToolSuccesses++
				label = normalized
			} else {
				log.Debug().Str("agent", AgentSentiment).Str("label", raw).Msg("invalid sentiment label, using rule-based fallback")
			}
		} else {
			log.Debug().Err(err).Str("agent", AgentSentiment).Msg("model unavailable, using rule-based fallback")
		}
	}

	if label == "" {
		label = ruleBasedSentiment(text)
	}

	st.Sentiment = label
	st.StepCount++

	st.Send(AgentSentiment, AgentActions, state.MsgSentimentSignal, state.SentimentSignal{
		Sentiment: label,
	})

	return st, nil
}
