package prebuilt

import (
	"context"
	"fmt"

	"github.com/flowgraph-dev/flowgraph/graph"
)

// HandoffAgent is one station of a handoff graph. Handle inspects the state
// and returns a Command: either a reply that ends the turn, or a transfer
// that jumps straight to another agent.
type HandoffAgent struct {
	// Name is the agent's node name and transfer target.
	Name string

	// Description shows up in graph exports.
	Description string

	// Handle produces the agent's decision for the current turn.
	Handle func(ctx context.Context, state map[string]any) (*graph.Command, error)
}

// Transfer builds the command that hands the baton to another agent. The
// update is merged before the target runs; the active agent key is set so the
// next turn's entry router dispatches there directly.
func Transfer(target string, update map[string]any) *graph.Command {
	if update == nil {
		update = map[string]any{}
	}
	update["active_agent"] = target
	return &graph.Command{
		Update: update,
		Goto:   target,
	}
}

// Reply builds the command that ends the turn with a state update, leaving
// the baton where it is.
func Reply(update map[string]any) *graph.Command {
	return &graph.Command{
		Update: update,
		Goto:   graph.END,
	}
}

// CreateHandoffGraph builds a star-shaped multi-agent graph. Every
// invocation enters through a router that reads the active agent baton from
// the state (falling back to defaultAgent) and jumps to that agent. Agents
// pass the baton with Transfer or end the turn with Reply. Combined with a
// checkpoint store, the baton survives across turns of a conversation.
func CreateHandoffGraph(defaultAgent string, agents ...HandoffAgent) (*graph.Runnable[map[string]any], error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("handoff: at least one agent is required")
	}

	names := make(map[string]bool, len(agents))
	for _, a := range agents {
		if a.Handle == nil {
			return nil, fmt.Errorf("handoff: agent %q has no handler", a.Name)
		}
		names[a.Name] = true
	}
	if !names[defaultAgent] {
		return nil, fmt.Errorf("handoff: default agent %q is not among the agents", defaultAgent)
	}

	workflow := graph.NewStateGraph[map[string]any]()

	schema := graph.NewMapSchema()
	schema.RegisterReducer("messages", graph.AddMessages)
	workflow.SetSchema(schema)

	workflow.AddCommandNode("router", "Entry router dispatching on the active agent", func(_ context.Context, state map[string]any) (*graph.Command, error) {
		active, _ := state["active_agent"].(string)
		if active == "" || !names[active] {
			active = defaultAgent
		}
		return &graph.Command{Goto: active}, nil
	})

	for _, a := range agents {
		agent := a
		desc := agent.Description
		if desc == "" {
			desc = "Agent: " + agent.Name
		}
		workflow.AddCommandNode(agent.Name, desc, func(ctx context.Context, state map[string]any) (*graph.Command, error) {
			cmd, err := agent.Handle(ctx, state)
			if err != nil {
				return nil, err
			}
			if cmd == nil {
				return nil, fmt.Errorf("handoff: agent %q returned no command", agent.Name)
			}
			if target, ok := cmd.Goto.(string); ok && target != graph.END && !names[target] {
				return nil, fmt.Errorf("handoff: agent %q transferred to unknown agent %q", agent.Name, target)
			}
			return cmd, nil
		})
	}

	workflow.SetEntryPoint("router")

	return workflow.Compile()
}
