package state

// MemoryState accumulates trends across calls for the lifetime of the
// process. It is a plain record: serializing concurrent folds is the
// responsibility of whoever owns it (the supervisor takes one lock per fold).
type MemoryState struct {
	TotalCalls int `json:"total_calls"`

	SentimentCounts    map[string]int `json:"sentiment_counts"`
	PainPointCounts    map[string]int `json:"pain_point_counts"`
	ProductIssueCounts map[string]int `json:"product_issue_counts"`

	// Running averages over the calls that actually supplied each score.
	// The sample counters track the per-field divisor: a call that never
	// produced a given score does not move that score's average.
	AvgFaithfulness     float64 `json:"avg_faithfulness"`
	AvgCoverage         float64 `json:"avg_coverage"`
	AvgConsistency      float64 `json:"avg_consistency"`
	FaithfulnessSamples int     `json:"faithfulness_samples"`
	CoverageSamples     int     `json:"coverage_samples"`
	ConsistencySamples  int     `json:"consistency_samples"`
}

func NewMemoryState() *MemoryState {
	return &MemoryState{
		SentimentCounts:    make(map[string]int),
		PainPointCounts:    make(map[string]int),
		ProductIssueCounts: make(map[string]int),
	}
}
