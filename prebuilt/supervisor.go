package prebuilt

import (
	"context"
	"fmt"
	"sort"

	"github.com/flowgraph-dev/flowgraph/graph"
	"github.com/flowgraph-dev/flowgraph/log"
)

// Finish is the routing decision that ends a supervised run.
const Finish = "FINISH"

// RouteFunc decides, from the merged state, which member runs next. It
// returns a member name or Finish.
type RouteFunc func(ctx context.Context, state map[string]any) (string, error)

// Member is a worker node managed by a supervisor. Work returns a partial
// state update, merged through the graph schema like any node result.
type Member func(ctx context.Context, state map[string]any) (map[string]any, error)

// SupervisorOptions tune CreateSupervisorWithOptions.
type SupervisorOptions struct {
	// MaxTurns caps supervisor decisions per run. When the cap is reached the
	// run finishes regardless of the route function. Zero means no cap.
	MaxTurns int

	// Schema overrides the default schema (messages with the AddMessages
	// reducer).
	Schema *graph.MapSchema

	// Logger receives routing decisions. Defaults to the package logger.
	Logger log.Logger
}

// CreateSupervisor builds a hub-and-spoke graph: a supervisor node consults
// the route function after every member turn and dispatches the next member,
// until the route returns Finish. Members always report back to the
// supervisor.
func CreateSupervisor(route RouteFunc, members map[string]Member) (*graph.Runnable[map[string]any], error) {
	return CreateSupervisorWithOptions(route, members, SupervisorOptions{})
}

// CreateSupervisorWithOptions is CreateSupervisor with explicit options.
func CreateSupervisorWithOptions(route RouteFunc, members map[string]Member, opts SupervisorOptions) (*graph.Runnable[map[string]any], error) {
	if route == nil {
		return nil, fmt.Errorf("supervisor: route function is required")
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("supervisor: at least one member is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.GetDefaultLogger()
	}

	workflow := graph.NewStateGraph[map[string]any]()

	schema := opts.Schema
	if schema == nil {
		schema = graph.NewMapSchema()
		schema.RegisterReducer("messages", graph.AddMessages)
	}
	workflow.SetSchema(schema)

	memberNames := make([]string, 0, len(members))
	for name := range members {
		memberNames = append(memberNames, name)
	}
	sort.Strings(memberNames)

	workflow.AddNode("supervisor", "Supervisor orchestration node", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		turns, _ := state["supervisor_turns"].(int)
		turns++

		if opts.MaxTurns > 0 && turns > opts.MaxTurns {
			logger.Warn("supervisor: turn cap %d reached, finishing", opts.MaxTurns)
			return map[string]any{
				"next":             Finish,
				"supervisor_turns": turns,
			}, nil
		}

		decision, err := route(ctx, state)
		if err != nil {
			return nil, fmt.Errorf("supervisor route failed: %w", err)
		}
		if decision != Finish {
			if _, ok := members[decision]; !ok {
				return nil, fmt.Errorf("supervisor routed to unknown member %q", decision)
			}
		}

		logger.Debug("supervisor: turn %d -> %s", turns, decision)
		return map[string]any{
			"next":             decision,
			"supervisor_turns": turns,
		}, nil
	})

	for _, name := range memberNames {
		member := members[name]
		workflow.AddNode(name, "Member: "+name, func(ctx context.Context, state map[string]any) (map[string]any, error) {
			return member(ctx, state)
		})
		workflow.AddEdge(name, "supervisor")
	}

	workflow.SetEntryPoint("supervisor")

	workflow.AddConditionalEdge("supervisor", func(_ context.Context, state map[string]any) string {
		next, ok := state["next"].(string)
		if !ok || next == Finish {
			return graph.END
		}
		return next
	})

	return workflow.Compile()
}
