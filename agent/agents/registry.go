// Package agents contains the pipeline agents and the registry that names
// them. Every agent is total: capability and parse failures are absorbed by a
// deterministic rule-based fallback, so an agent always produces a result and
// never returns an error for external reasons.
package agents

import (
	"context"
	"fmt"

	"github.com/callsense-ai/callsense/agent/contract"
	"github.com/callsense-ai/callsense/agent/prompt"
	"github.com/callsense-ai/callsense/agent/state"
)

// Stable agent names used by the registry and as A2A addresses.
const (
	AgentCleaning      = "cleaning"
	AgentEntities      = "entities"
	AgentSummarization = "summarization"
	AgentSentiment     = "sentiment"
	AgentFrustration   = "frustration_loop"
	AgentPainPoints    = "pain_points"
	AgentActions       = "actions"
	AgentEvaluation    = "evaluation"
)

// AgentFn mutates the call state in place and returns it. An error return is
// reserved for programming mistakes (nil state); external failures degrade to
// the agent's fallback path instead.
type AgentFn func(ctx context.Context, st *state.CallState, caps contract.Capabilities) (*state.CallState, error)

var prompts = prompt.LoadPromptSet()

// Registry maps stable names to agents and defines the canonical execution
// order for a full run. Evaluation is registered but excluded from the order:
// the supervisor runs it separately after the pipeline agents.
type Registry struct {
	byName map[string]AgentFn
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{
		byName: map[string]AgentFn{
			AgentCleaning:      Cleaning,
			AgentEntities:      Entities,
			AgentSummarization: Summarization,
			AgentSentiment:     Sentiment,
			AgentFrustration:   FrustrationLoop,
			AgentPainPoints:    PainPoints,
			AgentActions:       Actions,
			AgentEvaluation:    Evaluation,
		},
		order: []string{
			AgentCleaning,
			AgentEntities,
			AgentSummarization,
			AgentSentiment,
			AgentFrustration,
			AgentPainPoints,
			AgentActions,
		},
	}
}

// Register adds or replaces an agent without touching the execution order.
func (r *Registry) Register(name string, fn AgentFn) {
	r.byName[name] = fn
}

// Unregister removes an agent by name.
func (r *Registry) Unregister(name string) {
	delete(r.byName, name)
}

// Get returns the agent registered under name. An unregistered name is a
// configuration failure, never a silent no-op.
func (r *Registry) Get(name string) (AgentFn, error) {
	fn, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", contract.ErrUnknownAgent, name)
	}
	return fn, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// ExecutionOrder returns a copy of the canonical pipeline order.
func (r *Registry) ExecutionOrder() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
