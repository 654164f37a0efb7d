package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// StateGraph is a builder for a state-based workflow graph. The type
// parameter S is the state threaded through node executions, typically a
// map[string]any governed by a MapSchema or a plain struct.
//
// Example:
//
//	g := graph.NewStateGraph[map[string]any]()
//	g.AddNode("classify", "classify the input", classifyNode)
//	g.AddEdge(graph.START, "classify")
//	g.AddEdge("classify", graph.END)
//	app, err := g.Compile()
type StateGraph[S any] struct {
	// nodes maps node names to their Node objects.
	nodes map[string]Node[S]

	// edges are the fixed transitions between nodes.
	edges []Edge

	// conditionalEdges map a source node to a routing function evaluated on
	// the merged state after each superstep.
	conditionalEdges map[string]func(ctx context.Context, state S) string

	// dispatchEdges map a source node to a fan-out function producing Send
	// packets for the next superstep.
	dispatchEdges map[string]func(ctx context.Context, state S) []Send

	// entryPoint is the name of the entry node.
	entryPoint string

	// retryPolicy defines retry behavior for failed nodes.
	retryPolicy *RetryPolicy

	// Schema defines the state structure and update logic.
	Schema StateSchema[S]
}

// NewStateGraph creates a new, empty StateGraph.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]func(ctx context.Context, state S) string),
		dispatchEdges:    make(map[string]func(ctx context.Context, state S) []Send),
	}
}

// AddNode adds a node with the given name, description and function.
func (g *StateGraph[S]) AddNode(name string, description string, fn func(ctx context.Context, state S) (S, error)) {
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddCommandNode adds a node whose return value both updates the state and
// names the next node, overriding any edges out of it. This is the handoff
// primitive: agents jump to one another without wiring explicit edges.
func (g *StateGraph[S]) AddCommandNode(name string, description string, fn func(ctx context.Context, state S) (*Command, error)) {
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		CommandFunc: fn,
	}
}

// AddEdge adds a fixed edge between the "from" and "to" nodes. Multiple
// edges out of the same node fan out in parallel. An edge from START sets
// the entry point.
func (g *StateGraph[S]) AddEdge(from, to string) {
	if from == START {
		g.entryPoint = to
		return
	}
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdge adds an edge whose target node is computed at run time
// from the merged state.
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string) {
	g.conditionalEdges[from] = condition
}

// AddDispatchEdges adds a dynamic fan-out edge: after "from" completes, the
// dispatch function is called on the merged state and every returned Send
// schedules its target node with a task-local payload for the next superstep.
func (g *StateGraph[S]) AddDispatchEdges(from string, dispatch func(ctx context.Context, state S) []Send) {
	g.dispatchEdges[from] = dispatch
}

// SetEntryPoint sets the entry point node name for the graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetRetryPolicy sets the retry policy for the graph.
func (g *StateGraph[S]) SetRetryPolicy(policy *RetryPolicy) {
	g.retryPolicy = policy
}

// SetSchema sets the state schema for the graph.
func (g *StateGraph[S]) SetSchema(schema StateSchema[S]) {
	g.Schema = schema
}

// Compile validates the graph and returns a Runnable.
func (g *StateGraph[S]) Compile() (*Runnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, g.entryPoint)
	}
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, e.From)
		}
		if _, ok := g.nodes[e.To]; !ok && e.To != END {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, e.To)
		}
	}

	return &Runnable[S]{graph: g}, nil
}

// StepListener observes supersteps of a run. Implementations must be safe
// for reuse across runs.
type StepListener[S any] interface {
	// OnNodeComplete is called for each node result before it is merged.
	OnNodeComplete(ctx context.Context, node string, update S)

	// OnStep is called after a superstep's results are merged. ran holds the
	// nodes that executed, next the pending frontier (empty when the run is
	// about to finish).
	OnStep(ctx context.Context, ran []string, next []string, state S)
}

// Runnable is a compiled state graph that can be invoked.
type Runnable[S any] struct {
	graph     *StateGraph[S]
	listeners []StepListener[S]
}

// AddListener registers a step listener on the runnable.
func (r *Runnable[S]) AddListener(l StepListener[S]) {
	r.listeners = append(r.listeners, l)
}

// Graph returns the underlying graph definition.
func (r *Runnable[S]) Graph() *StateGraph[S] {
	return r.graph
}

// task is one scheduled node execution within a superstep. Send packets
// carry their own payload; regular transitions share the merged state.
type task struct {
	node       string
	payload    any
	hasPayload bool
}

// nodeResult is the raw outcome of a single node execution.
type nodeResult[S any] struct {
	update S
	cmd    *Command
	hasCmd bool
}

// Invoke executes the compiled graph with the given input state and returns
// the final state.
func (r *Runnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	return r.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig executes the compiled graph with the given input state and
// per-run config. When execution suspends at an interrupt point the current
// state is returned together with a *GraphInterrupt error.
func (r *Runnable[S]) InvokeWithConfig(ctx context.Context, initialState S, config *Config) (S, error) {
	var zero S

	state := initialState

	// Merge the input into the schema's initial state so reducers apply from
	// the very first update.
	if r.graph.Schema != nil {
		var err error
		state, err = r.graph.Schema.Update(r.graph.Schema.Init(), initialState)
		if err != nil {
			return zero, fmt.Errorf("failed to initialize state with schema: %w", err)
		}
	}

	frontier := []task{{node: r.graph.entryPoint}}
	if config != nil && len(config.ResumeFrom) > 0 {
		frontier = frontier[:0]
		for _, n := range config.ResumeFrom {
			frontier = append(frontier, task{node: n})
		}
	}

	if config != nil {
		ctx = WithConfig(ctx, config)
		if config.ResumeValue != nil {
			ctx = WithResumeValue(ctx, config.ResumeValue)
		}
	}

	limit := config.recursionLimit()

	for step := 0; len(frontier) > 0; step++ {
		if step >= limit {
			return state, fmt.Errorf("%w after %d supersteps", ErrRecursionLimit, limit)
		}

		// Drop END markers from the frontier.
		active := frontier[:0]
		for _, t := range frontier {
			if t.node != END {
				active = append(active, t)
			}
		}
		frontier = active
		if len(frontier) == 0 {
			break
		}

		if config != nil && len(config.InterruptBefore) > 0 {
			for _, t := range frontier {
				if slices.Contains(config.InterruptBefore, t.node) {
					return state, &GraphInterrupt{Node: t.node, State: state, NextNodes: taskNodes(frontier)}
				}
			}
		}

		results, errs := r.executeTasks(ctx, frontier, state)
		for _, err := range errs {
			if err == nil {
				continue
			}
			var nodeInterrupt *NodeInterrupt
			if errors.As(err, &nodeInterrupt) {
				return state, &GraphInterrupt{
					Node:           nodeInterrupt.Node,
					State:          state,
					NextNodes:      []string{nodeInterrupt.Node},
					InterruptValue: nodeInterrupt.Value,
				}
			}
			return zero, err
		}

		updates, gotoTasks, err := r.processResults(results)
		if err != nil {
			return zero, err
		}

		state, err = r.mergeState(ctx, state, updates)
		if err != nil {
			return zero, err
		}

		next, err := r.nextFrontier(ctx, frontier, state, gotoTasks)
		if err != nil {
			return zero, err
		}

		ran := taskNodes(frontier)
		frontier = next

		if len(r.listeners) > 0 {
			pending := pendingNodes(next)
			for _, l := range r.listeners {
				l.OnStep(ctx, ran, pending, state)
			}
		}

		if config != nil && len(config.InterruptAfter) > 0 {
			for _, n := range ran {
				if slices.Contains(config.InterruptAfter, n) {
					return state, &GraphInterrupt{Node: n, State: state, NextNodes: pendingNodes(next)}
				}
			}
		}
	}

	return state, nil
}

// executeTasks runs all tasks of a superstep in parallel and returns their
// results or errors, indexed by task.
func (r *Runnable[S]) executeTasks(ctx context.Context, tasks []task, state S) ([]nodeResult[S], []error) {
	var wg sync.WaitGroup
	results := make([]nodeResult[S], len(tasks))
	errs := make([]error, len(tasks))

	for i, t := range tasks {
		node, ok := r.graph.nodes[t.node]
		if !ok {
			errs[i] = fmt.Errorf("%w: %s", ErrNodeNotFound, t.node)
			continue
		}

		idx := i
		tk := t
		n := node

		SafeGo(&wg, func() {
			nodeCtx := ctx
			input := state
			if tk.hasPayload {
				nodeCtx = withSendPayload(ctx, tk.payload)
				if own, ok := tk.payload.(S); ok {
					input = own
				}
			}

			res, err := r.runWithRetry(nodeCtx, n, input)
			if err != nil {
				var nodeInterrupt *NodeInterrupt
				if errors.As(err, &nodeInterrupt) {
					nodeInterrupt.Node = tk.node
					errs[idx] = err
					return
				}
				errs[idx] = fmt.Errorf("error in node %s: %w", tk.node, err)
				return
			}
			results[idx] = res

			if len(r.listeners) > 0 {
				update := res.update
				if res.hasCmd {
					upd, ok := res.cmd.Update.(S)
					if !ok {
						return
					}
					update = upd
				}
				for _, l := range r.listeners {
					l.OnNodeComplete(nodeCtx, tk.node, update)
				}
			}
		}, func(panicVal any) {
			errs[idx] = fmt.Errorf("panic in node %s: %v", tk.node, panicVal)
		})
	}
	wg.Wait()
	return results, errs
}

// processResults splits node results into state updates and goto targets
// produced by commands.
func (r *Runnable[S]) processResults(results []nodeResult[S]) ([]S, []task, error) {
	updates := make([]S, 0, len(results))
	var gotoTasks []task

	for _, res := range results {
		cmd := res.cmd
		if !res.hasCmd {
			// A plain result may still be a Command when S is an interface
			// type; honor it the same way.
			if c, ok := any(res.update).(*Command); ok {
				cmd = c
			} else {
				updates = append(updates, res.update)
				continue
			}
		}

		if cmd.Update != nil {
			upd, ok := cmd.Update.(S)
			if !ok {
				return nil, nil, fmt.Errorf("command update is %T, not the graph state type", cmd.Update)
			}
			updates = append(updates, upd)
		}

		switch g := cmd.Goto.(type) {
		case nil:
		case string:
			gotoTasks = append(gotoTasks, task{node: g})
		case []string:
			for _, n := range g {
				gotoTasks = append(gotoTasks, task{node: n})
			}
		case []Send:
			for _, s := range g {
				gotoTasks = append(gotoTasks, task{node: s.To, payload: s.Payload, hasPayload: true})
			}
		default:
			return nil, nil, fmt.Errorf("command goto is %T, want string, []string or []Send", cmd.Goto)
		}
	}

	return updates, gotoTasks, nil
}

// mergeState merges the superstep's updates into the current state. With a
// schema, every update goes through the registered reducers; without one the
// last update wins.
func (r *Runnable[S]) mergeState(_ context.Context, current S, updates []S) (S, error) {
	state := current
	if r.graph.Schema != nil {
		for _, upd := range updates {
			var err error
			state, err = r.graph.Schema.Update(state, upd)
			if err != nil {
				var zero S
				return zero, fmt.Errorf("schema update failed: %w", err)
			}
		}
		return state, nil
	}

	if len(updates) > 0 {
		state = updates[len(updates)-1]
	}
	return state, nil
}

// nextFrontier resolves the next superstep from command gotos, dispatch
// edges, conditional edges and static edges, in that order of precedence.
func (r *Runnable[S]) nextFrontier(ctx context.Context, ran []task, state S, gotoTasks []task) ([]task, error) {
	if len(gotoTasks) > 0 {
		// Command.Goto overrides edges. Deduplicate plain jumps; Send packets
		// are kept as-is since each carries its own payload.
		seen := make(map[string]bool)
		next := gotoTasks[:0]
		for _, t := range gotoTasks {
			if t.node == END {
				continue
			}
			if !t.hasPayload {
				if seen[t.node] {
					continue
				}
				seen[t.node] = true
			}
			next = append(next, t)
		}
		return next, nil
	}

	var next []task
	seen := make(map[string]bool)
	addTarget := func(n string) {
		if !seen[n] {
			seen[n] = true
			next = append(next, task{node: n})
		}
	}

	for _, t := range ran {
		name := t.node

		if dispatch, ok := r.graph.dispatchEdges[name]; ok {
			sends := dispatch(ctx, state)
			if len(sends) == 0 {
				return nil, fmt.Errorf("dispatch edge from %s produced no sends", name)
			}
			for _, s := range sends {
				if _, ok := r.graph.nodes[s.To]; !ok {
					return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, s.To)
				}
				next = append(next, task{node: s.To, payload: s.Payload, hasPayload: true})
			}
			continue
		}

		if condition, ok := r.graph.conditionalEdges[name]; ok {
			target := condition(ctx, state)
			if target == "" {
				return nil, fmt.Errorf("conditional edge returned empty next node from %s", name)
			}
			if _, ok := r.graph.nodes[target]; !ok && target != END {
				return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
			}
			addTarget(target)
			continue
		}

		found := false
		for _, edge := range r.graph.edges {
			if edge.From == name {
				addTarget(edge.To)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNoOutgoingEdge, name)
		}
	}

	return next, nil
}

// successors resolves the static/conditional targets of a single node. Used
// by checkpointable runnables to recompute the pending frontier after a
// manual state edit.
func (r *Runnable[S]) successors(ctx context.Context, node string, state S) []string {
	next, err := r.nextFrontier(ctx, []task{{node: node}}, state, nil)
	if err != nil {
		return nil
	}
	return pendingNodes(next)
}

func taskNodes(tasks []task) []string {
	nodes := make([]string, 0, len(tasks))
	for _, t := range tasks {
		nodes = append(nodes, t.node)
	}
	return nodes
}

// pendingNodes lists the distinct non-END nodes of a frontier.
func pendingNodes(tasks []task) []string {
	nodes := make([]string, 0, len(tasks))
	seen := make(map[string]bool)
	for _, t := range tasks {
		if t.node == END || seen[t.node] {
			continue
		}
		seen[t.node] = true
		nodes = append(nodes, t.node)
	}
	return nodes
}
