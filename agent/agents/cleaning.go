package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/callsense-ai/callsense/agent/contract"
	"github.com/callsense-ai/callsense/agent/state"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	artifactRe   = regexp.MustCompile(`(?i)\[(noise|music|silence)\]`)
)

func fallbackClean(text string) string {
	if text == "" {
		return ""
	}
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	return artifactRe.ReplaceAllString(text, "")
}

// splitUtterances segments text on sentence boundaries (., !, ? followed by
// whitespace). Real systems would have diarization and speaker tags; this is
// a deliberately lightweight stand-in.
func splitUtterances(text string) []string {
	if text == "" {
		return nil
	}

	var parts []string
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			parts = append(parts, b.String())
			b.Reset()
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
		}
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}

	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Cleaning normalizes the raw transcript through the external cleaner when
// one is configured, degrading to local regex cleaning, then segments the
// result into utterances.
//
// Writes: CleanedTranscript, Utterances.
func Cleaning(ctx context.Context, st *state.CallState, caps contract.Capabilities) (*state.CallState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: call state is nil", contract.ErrValidation)
	}

	raw := st.RawTranscript
	var cleaned string

	if caps.Cleaner != nil {
		st.ToolCalls++
		out, err := caps.Cleaner.Clean(ctx, raw)
		if err != nil {
			log.Debug().Err(err).Str("agent", AgentCleaning).Msg("cleaner unavailable, using local fallback")
			cleaned = fallbackClean(raw)
		} else {
			st.ToolSuccesses++
			cleaned = out
		}
	} else {
		cleaned = fallbackClean(raw)
	}

	st.CleanedTranscript = cleaned
	st.Utterances = splitUtterances(cleaned)
	st.StepCount++
	return st, nil
}
