package state

import (
	"time"
)

// FrustrationLevel classifies a single customer utterance.
type FrustrationLevel string

const (
	FrustrationLow    FrustrationLevel = "low"
	FrustrationMedium FrustrationLevel = "medium"
	FrustrationHigh   FrustrationLevel = "high"
)

// FrustrationPoint is one entry of the per-utterance frustration timeline.
type FrustrationPoint struct {
	Index     int              `json:"index"`
	Utterance string           `json:"utterance"`
	Level     FrustrationLevel `json:"level"`
}

// Entities holds the structured context extracted from a transcript.
type Entities struct {
	CustomerProfile string   `json:"customer_profile,omitempty"`
	Product         string   `json:"product,omitempty"`
	Issue           string   `json:"issue,omitempty"`
	Context         string   `json:"context,omitempty"`
	Priority        string   `json:"priority,omitempty"`
	OtherTags       []string `json:"other_tags,omitempty"`
}

// Evaluation holds per-call quality metrics. The three scores are pointers:
// nil means the score was never produced for this call, which the memory
// aggregation treats differently from a zero score.
type Evaluation struct {
	ToolCalls       int      `json:"tool_calls"`
	ToolSuccesses   int      `json:"tool_successes"`
	ToolSuccessRate float64  `json:"tool_success_rate"`
	StepCount       int      `json:"step_count"`
	DurationSec     float64  `json:"duration_sec"`
	Faithfulness    *float64 `json:"faithfulness_score,omitempty"`
	Coverage        *float64 `json:"coverage_score,omitempty"`
	Consistency     *float64 `json:"consistency_score,omitempty"`
	Notes           string   `json:"eval_notes,omitempty"`
}

// CallState is the per-call working record. It is owned exclusively by the
// supervisor run that created it and mutated in place by each agent in turn.
// Each agent writes only its designated fields and may read anything written
// by an earlier agent in the canonical order.
type CallState struct {
	CallID        string `json:"call_id,omitempty"`
	RawTranscript string `json:"raw_transcript"`

	CleanedTranscript string   `json:"cleaned_transcript,omitempty"`
	Utterances        []string `json:"utterances,omitempty"`

	Entities            *Entities          `json:"entities,omitempty"`
	Summary             string             `json:"summary,omitempty"`
	Sentiment           string             `json:"sentiment,omitempty"`
	FrustrationTimeline []FrustrationPoint `json:"frustration_timeline,omitempty"`
	PainPoints          []string           `json:"pain_points,omitempty"`
	RecommendedActions  []string           `json:"recommended_actions,omitempty"`

	// Messages is the append-only A2A log; see a2a.go.
	Messages []Message `json:"messages,omitempty"`

	Evaluation *Evaluation `json:"evaluation,omitempty"`

	StartTS       time.Time `json:"start_ts"`
	StepCount     int       `json:"step_count"`
	ToolCalls     int       `json:"tool_calls"`
	ToolSuccesses int       `json:"tool_successes"`
}

func NewCallState(callID, rawTranscript string, now time.Time) *CallState {
	return &CallState{
		CallID:        callID,
		RawTranscript: rawTranscript,
		StartTS:       now.UTC(),
	}
}

// Transcript returns the cleaned transcript when the cleaning agent has run,
// otherwise the raw input. All agents resolve text through this accessor.
func (c *CallState) Transcript() string {
	if c == nil {
		return ""
	}
	if c.CleanedTranscript != "" {
		return c.CleanedTranscript
	}
	return c.RawTranscript
}
