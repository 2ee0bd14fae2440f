package contract

import "context"

// LLM is the narrow contract for a language-model capability. Calls may fail
// for transport reasons; the response is opaque text that the calling agent
// is responsible for parsing. A parse failure must be treated identically to
// a call failure by the caller (engage the fallback path).
type LLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// TranscriptCleaner is an external cleaning service for raw transcripts.
type TranscriptCleaner interface {
	Clean(ctx context.Context, text string) (string, error)
}

// Transcript is one raw call transcript supplied by a source.
type Transcript struct {
	ID   string
	Text string
}

// TranscriptSource supplies raw transcripts to analyze (CSV file, database).
type TranscriptSource interface {
	Load(ctx context.Context) ([]Transcript, error)
}

// Capabilities bundles the external tools shared by all agents in a run.
// Either member may be nil, which forces the rule-based fallback path.
type Capabilities struct {
	LLM     LLM
	Cleaner TranscriptCleaner
}
