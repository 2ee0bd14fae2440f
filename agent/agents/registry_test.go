package agents

import (
	"errors"
	"testing"

	"github.com/callsense-ai/callsense/agent/contract"
)

func TestRegistryGetUnknownAgent(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("nonexistent")
	if !errors.Is(err, contract.ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestRegistryCanonicalOrder(t *testing.T) {
	r := NewRegistry()

	want := []string{
		AgentCleaning, AgentEntities, AgentSummarization, AgentSentiment,
		AgentFrustration, AgentPainPoints, AgentActions,
	}
	got := r.ExecutionOrder()
	if len(got) != len(want) {
		t.Fatalf("order length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Evaluation runs after the pipeline, so it is registered but not ordered.
	if !r.Has(AgentEvaluation) {
		t.Fatal("evaluation must be registered")
	}
	for _, name := range got {
		if name == AgentEvaluation {
			t.Fatal("evaluation must not appear in the execution order")
		}
	}
}

func TestRegistryExecutionOrderReturnsCopy(t *testing.T) {
	r := NewRegistry()

	order := r.ExecutionOrder()
	order[0] = "tampered"

	if r.ExecutionOrder()[0] != AgentCleaning {
		t.Fatal("mutating the returned slice must not affect the registry")
	}
}

func TestRegistryRegisterAndUnregister(t *testing.T) {
	r := NewRegistry()

	r.Unregister(AgentCleaning)
	if r.Has(AgentCleaning) {
		t.Fatal("cleaning should be gone after Unregister")
	}

	r.Register(AgentCleaning, Cleaning)
	if _, err := r.Get(AgentCleaning); err != nil {
		t.Fatalf("re-registered agent must resolve, got %v", err)
	}
}
