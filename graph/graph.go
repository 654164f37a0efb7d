package graph

import (
	"context"
	"errors"
)

// START is the virtual entry node of a graph. Adding an edge from START is
// equivalent to calling SetEntryPoint.
const START = "START"

// END is a special constant used to represent the terminal node in the graph.
const END = "END"

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrRecursionLimit is returned when a run exceeds its superstep budget.
	ErrRecursionLimit = errors.New("recursion limit exceeded")
)

// Node represents a named unit of computation in the graph.
type Node[S any] struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes the functionality of the node.
	Description string

	// Function takes the current state and returns a (partial) state update.
	Function func(ctx context.Context, state S) (S, error)

	// CommandFunc, when set instead of Function, lets the node steer routing
	// by returning a Command alongside its state update.
	CommandFunc func(ctx context.Context, state S) (*Command, error)
}

// Edge represents a fixed transition between two nodes.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}

// Send is a dispatch packet produced by a dispatch edge. It schedules the
// target node for the next superstep with its own payload, enabling
// dynamically sized fan-out (the map phase of map-reduce).
type Send struct {
	// To is the node to invoke.
	To string

	// Payload is the task-local state handed to the node. If it is assignable
	// to the graph state type it replaces the node's input state; it is also
	// always available via SendPayload(ctx).
	Payload any
}

// Command is returned by a node (via AddCommandNode) to combine a state
// update with an explicit jump, overriding static and conditional edges.
type Command struct {
	// Update is the partial state update to merge. May be nil.
	Update any

	// Goto names the next node(s): a string, a []string, or a []Send.
	// Use END to finish the run.
	Goto any
}

// Interrupt pauses execution and waits for external input. If the run is
// being resumed with a resume value, that value is returned instead. The
// resume value is consumed on delivery, so a later Interrupt in the same run
// pauses the graph again.
func Interrupt(ctx context.Context, value any) (any, error) {
	if resumeVal := takeResumeValue(ctx); resumeVal != nil {
		return resumeVal, nil
	}
	return nil, &NodeInterrupt{Value: value}
}

// MessageGraph is shorthand for the common map-state graph whose "messages"
// key accumulates a conversation via the AddMessages reducer.
func NewMessageGraph() *StateGraph[map[string]any] {
	g := NewStateGraph[map[string]any]()

	schema := NewMapSchema()
	schema.RegisterReducer("messages", AddMessages)
	g.SetSchema(schema)

	return g
}
