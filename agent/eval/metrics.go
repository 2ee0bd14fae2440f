// Package eval computes per-call observability metrics and folds finished
// calls into the long-term MemoryState. It is deliberately LLM-agnostic:
// model-based scoring happens in the evaluation agent, which stores its
// results in CallState.Evaluation before the fold.
package eval

import (
	"time"

	"github.com/callsense-ai/callsense/agent/state"
)

// ComputeBasicEval derives model-agnostic metrics from a single call. It is a
// pure function of the call state and the supplied clock reading.
func ComputeBasicEval(st *state.CallState, now time.Time) state.Evaluation {
	// No tool ever invoked counts as perfect success by policy, not as a
	// divide-by-zero guard.
	rate := 1.0
	if st.ToolCalls > 0 {
		rate = float64(st.ToolSuccesses) / float64(st.ToolCalls)
	}

	duration := now.Sub(st.StartTS).Seconds()
	if duration < 0 {
		duration = 0
	}

	return state.Evaluation{
		ToolCalls:       st.ToolCalls,
		ToolSuccesses:   st.ToolSuccesses,
		ToolSuccessRate: rate,
		StepCount:       st.StepCount,
		DurationSec:     duration,
	}
}

// UpdateMemoryFromCall folds one processed call into mem. It mutates mem in
// place and returns it for chaining.
//
// Each running average uses a per-score sample counter as its divisor, so the
// average is the true arithmetic mean of the values actually supplied; calls
// that never produced a score leave both the average and its divisor alone.
func UpdateMemoryFromCall(mem *state.MemoryState, st *state.CallState) *state.MemoryState {
	mem.TotalCalls++

	sentiment := st.Sentiment
	if sentiment == "" {
		sentiment = "unknown"
	}
	mem.SentimentCounts[sentiment]++

	// Duplicates within one call each count: agents are expected to have
	// deduped their own list already.
	for _, p := range st.PainPoints {
		mem.PainPointCounts[p]++
	}

	if st.Entities != nil && st.Entities.Product != "" {
		mem.ProductIssueCounts[st.Entities.Product]++
	}

	if ev := st.Evaluation; ev != nil {
		if ev.Faithfulness != nil {
			mem.FaithfulnessSamples++
			mem.AvgFaithfulness = runningAvg(mem.AvgFaithfulness, *ev.Faithfulness, mem.FaithfulnessSamples)
		}
		if ev.Coverage != nil {
			mem.CoverageSamples++
			mem.AvgCoverage = runningAvg(mem.AvgCoverage, *ev.Coverage, mem.CoverageSamples)
		}
		if ev.Consistency != nil {
			mem.ConsistencySamples++
			mem.AvgConsistency = runningAvg(mem.AvgConsistency, *ev.Consistency, mem.ConsistencySamples)
		}
	}

	return mem
}

func runningAvg(current, value float64, n int) float64 {
	return current + (value-current)/float64(n)
}
