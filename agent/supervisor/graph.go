package supervisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/callsense-ai/callsense/agent/agents"
	"github.com/callsense-ai/callsense/agent/eval"
	"github.com/callsense-ai/callsense/agent/state"
)

// compilePipelineGraph wires the linear state machine
// INIT -> RUNNING(agent_i)... -> EVALUATING -> MEMORY_UPDATE -> DONE
// as an eino graph. Each node advances only after the previous one returns;
// there is no branching and no retry at this layer — each agent carries its
// own fallback.
func (s *Supervisor) compilePipelineGraph(
	ctx context.Context,
) (compose.Runnable[Request, *state.CallState], error) {
	graph := compose.NewGraph[Request, *state.CallState]()

	if err := graph.AddLambdaNode("init",
		compose.InvokableLambda(func(ctx context.Context, req Request) (*state.CallState, error) {
			callID := strings.TrimSpace(req.CallID)
			if callID == "" {
				callID = s.newID()
			}
			return state.NewCallState(callID, req.RawTranscript, s.now()), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node init: %w", err)
	}

	order := s.registry.ExecutionOrder()
	for _, name := range order {
		agentName := name
		if err := graph.AddLambdaNode(agentName,
			compose.InvokableLambda(func(ctx context.Context, st *state.CallState) (*state.CallState, error) {
				fn, err := s.registry.Get(agentName)
				if err != nil {
					return nil, err
				}
				return fn(ctx, st, s.caps)
			}),
		); err != nil {
			return nil, fmt.Errorf("add node %s: %w", agentName, err)
		}
	}

	if err := graph.AddLambdaNode("evaluate",
		compose.InvokableLambda(func(ctx context.Context, st *state.CallState) (*state.CallState, error) {
			// Evaluation missing from the registry is a skip, not a failure.
			fn, err := s.registry.Get(agents.AgentEvaluation)
			if err != nil {
				return st, nil
			}
			return fn(ctx, st, s.caps)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node evaluate: %w", err)
	}

	if err := graph.AddLambdaNode("update_memory",
		compose.InvokableLambda(func(ctx context.Context, st *state.CallState) (*state.CallState, error) {
			if s.updateMemory {
				s.mu.Lock()
				eval.UpdateMemoryFromCall(s.memory, st)
				s.mu.Unlock()
			}
			return st, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node update_memory: %w", err)
	}

	nodes := append([]string{"init"}, order...)
	nodes = append(nodes, "evaluate", "update_memory")

	prev := compose.START
	for _, node := range nodes {
		if err := graph.AddEdge(prev, node); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", prev, node, err)
		}
		prev = node
	}
	if err := graph.AddEdge(prev, compose.END); err != nil {
		return nil, fmt.Errorf("add edge %s->end: %w", prev, err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("supervisor.run_pipeline"))
	if err != nil {
		return nil, fmt.Errorf("compile pipeline graph: %w", err)
	}
	return runner, nil
}
