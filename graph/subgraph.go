package graph

import (
	"context"
	"fmt"
)

// Subgraph is a compiled graph embedded as a single node of a parent graph.
// The parent sees it as an ordinary node: one input state in, one merged
// state out. Interrupts raised inside the subgraph surface on the parent run.
type Subgraph[T any] struct {
	name     string
	runnable *Runnable[T]
}

// NewSubgraph compiles the child graph for embedding.
func NewSubgraph[T any](name string, child *StateGraph[T]) (*Subgraph[T], error) {
	runnable, err := child.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile subgraph %s: %w", name, err)
	}

	return &Subgraph[T]{
		name:     name,
		runnable: runnable,
	}, nil
}

// Execute runs the subgraph to completion on the given child state.
func (s *Subgraph[T]) Execute(ctx context.Context, state T) (T, error) {
	result, err := s.runnable.Invoke(ctx, state)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("subgraph %s execution failed: %w", s.name, err)
	}
	return result, nil
}

// AddSubgraph embeds a child graph as a node of the parent. The converter
// maps the parent state to the child's input; resultConverter folds the
// child's final state back into the parent state. The two graphs may use
// entirely different state shapes.
func AddSubgraph[S, T any](
	g *StateGraph[S],
	name string,
	child *StateGraph[T],
	converter func(S) T,
	resultConverter func(parent S, childResult T) S,
) error {
	sg, err := NewSubgraph(name, child)
	if err != nil {
		return err
	}

	g.AddNode(name, "Subgraph: "+name, func(ctx context.Context, state S) (S, error) {
		result, err := sg.Execute(ctx, converter(state))
		if err != nil {
			var zero S
			return zero, err
		}
		return resultConverter(state, result), nil
	})
	return nil
}

// CreateSubgraph builds and embeds a child graph in one call. The builder
// receives an empty map-state graph to populate.
func CreateSubgraph[S any](
	g *StateGraph[S],
	name string,
	builder func(*StateGraph[map[string]any]) error,
	converter func(S) map[string]any,
	resultConverter func(parent S, childResult map[string]any) S,
) error {
	child := NewStateGraph[map[string]any]()
	if err := builder(child); err != nil {
		return fmt.Errorf("failed to build subgraph %s: %w", name, err)
	}
	return AddSubgraph(g, name, child, converter, resultConverter)
}

// AddRoutedSubgraphs embeds a family of child graphs behind one node. The
// router picks which child handles the current state; children are compiled
// once, up front.
func AddRoutedSubgraphs[S, T any](
	g *StateGraph[S],
	name string,
	router func(S) string,
	children map[string]*StateGraph[T],
	converter func(S) T,
	resultConverter func(parent S, childResult T) S,
) error {
	compiled := make(map[string]*Subgraph[T], len(children))
	for childName, child := range children {
		sg, err := NewSubgraph(childName, child)
		if err != nil {
			return err
		}
		compiled[childName] = sg
	}

	g.AddNode(name, "Routed subgraphs: "+name, func(ctx context.Context, state S) (S, error) {
		childName := router(state)
		sg, ok := compiled[childName]
		if !ok {
			var zero S
			return zero, fmt.Errorf("subgraph %s not found", childName)
		}

		result, err := sg.Execute(ctx, converter(state))
		if err != nil {
			var zero S
			return zero, err
		}
		return resultConverter(state, result), nil
	})
	return nil
}
