// Package supervisor runs the full call-analysis pipeline: it builds the
// per-call state, executes the registered agents in canonical order, runs the
// evaluation agent, and folds the finished call into the shared MemoryState.
package supervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/callsense-ai/callsense/agent/agents"
	"github.com/callsense-ai/callsense/agent/contract"
	"github.com/callsense-ai/callsense/agent/state"
)

// Request starts one pipeline run. CallID is optional; an ID is generated
// when it is empty.
type Request struct {
	CallID        string
	RawTranscript string
}

// Supervisor executes calls sequentially: one call is processed start to
// finish by one synchronous chain of agent invocations. The shared
// MemoryState fold is guarded by a single mutex so concurrent Run calls from
// separate goroutines cannot interleave counter and average updates.
type Supervisor struct {
	registry     *agents.Registry
	caps         contract.Capabilities
	updateMemory bool

	mu     sync.Mutex
	memory *state.MemoryState

	now   func() time.Time
	newID func() string

	runner compose.Runnable[Request, *state.CallState]
}

type Option func(*Supervisor)

// WithRegistry replaces the default agent registry.
func WithRegistry(r *agents.Registry) Option {
	return func(s *Supervisor) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithoutMemoryUpdate disables folding finished calls into MemoryState.
func WithoutMemoryUpdate() Option {
	return func(s *Supervisor) {
		s.updateMemory = false
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides call-ID generation, for tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Supervisor) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// New builds a supervisor around the given capabilities and memory. A nil
// memory gets a fresh MemoryState owned by the supervisor.
func New(caps contract.Capabilities, memory *state.MemoryState, opts ...Option) (*Supervisor, error) {
	if memory == nil {
		memory = state.NewMemoryState()
	}

	s := &Supervisor{
		registry:     agents.NewRegistry(),
		caps:         caps,
		updateMemory: true,
		memory:       memory,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	runner, err := s.compilePipelineGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.runner = runner

	return s, nil
}

// Run processes one transcript through the full pipeline and returns the
// finished call state. Every output field has a defined value even under
// total capability unavailability; the only errors surfaced are
// configuration failures such as an unregistered agent name.
func (s *Supervisor) Run(ctx context.Context, req Request) (*state.CallState, error) {
	st, err := s.runner.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("call_id", st.CallID).
		Int("steps", st.StepCount).
		Int("tool_calls", st.ToolCalls).
		Int("tool_successes", st.ToolSuccesses).
		Msg("pipeline finished")

	return st, nil
}

// Memory returns the aggregate the supervisor folds into.
func (s *Supervisor) Memory() *state.MemoryState {
	return s.memory
}

// RunPipeline is a convenience entry point for one-off runs: it builds a
// supervisor over caps, processes rawTranscript, and folds into memory unless
// updateMemory is false.
func RunPipeline(
	ctx context.Context,
	rawTranscript string,
	caps contract.Capabilities,
	memory *state.MemoryState,
	updateMemory bool,
) (*state.CallState, error) {
	var opts []Option
	if !updateMemory {
		opts = append(opts, WithoutMemoryUpdate())
	}
	s, err := New(caps, memory, opts...)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, Request{RawTranscript: rawTranscript})
}

// IsConfigurationError reports whether err is the fatal unknown-agent class.
func IsConfigurationError(err error) bool {
	return errors.Is(err, contract.ErrUnknownAgent)
}
