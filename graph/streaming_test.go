package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingGraph(t *testing.T) *Runnable[map[string]any] {
	t.Helper()

	g := NewStateGraph[map[string]any]()
	g.AddNode("one", "", func(_ context.Context, state map[string]any) (map[string]any, error) {
		return map[string]any{"count": 1}, nil
	})
	g.AddNode("two", "", func(_ context.Context, state map[string]any) (map[string]any, error) {
		count, _ := state["count"].(int)
		return map[string]any{"count": count + 1}, nil
	})
	g.AddEdge(START, "one")
	g.AddEdge("one", "two")
	g.AddEdge("two", END)

	schema := NewMapSchema()
	g.SetSchema(schema)

	app, err := g.Compile()
	require.NoError(t, err)
	return app
}

func TestStreamValuesMode(t *testing.T) {
	app := countingGraph(t)

	var steps []StreamEvent[map[string]any]
	var done StreamEvent[map[string]any]
	for ev := range app.Stream(context.Background(), map[string]any{}, nil, StreamModeValues) {
		switch ev.Type {
		case StreamEventStep:
			steps = append(steps, ev)
		case StreamEventDone:
			done = ev
		}
	}

	require.Len(t, steps, 2)
	assert.Equal(t, "one", steps[0].Node)
	assert.Equal(t, 1, steps[0].State["count"])
	assert.Equal(t, "two", steps[1].Node)
	assert.Equal(t, 2, steps[1].State["count"])

	require.NoError(t, done.Err)
	assert.Equal(t, 2, done.State["count"])
}

func TestStreamUpdatesMode(t *testing.T) {
	app := countingGraph(t)

	var updates []StreamEvent[map[string]any]
	for ev := range app.Stream(context.Background(), map[string]any{}, nil, StreamModeUpdates) {
		if ev.Type == StreamEventUpdate {
			updates = append(updates, ev)
		}
	}

	require.Len(t, updates, 2)
	assert.Equal(t, "one", updates[0].Node)
	assert.Equal(t, map[string]any{"count": 1}, updates[0].State)
	assert.Equal(t, "two", updates[1].Node)
	assert.Equal(t, map[string]any{"count": 2}, updates[1].State)
}

func TestStreamDoneCarriesError(t *testing.T) {
	g := NewStateGraph[map[string]any]()
	g.AddNode("fail", "", func(_ context.Context, _ map[string]any) (map[string]any, error) {
		return nil, assert.AnError
	})
	g.AddEdge(START, "fail")
	g.AddEdge("fail", END)

	app, err := g.Compile()
	require.NoError(t, err)

	var done StreamEvent[map[string]any]
	for ev := range app.Stream(context.Background(), map[string]any{}, nil, StreamModeValues) {
		if ev.Type == StreamEventDone {
			done = ev
		}
	}

	require.Error(t, done.Err)
	assert.ErrorIs(t, done.Err, assert.AnError)
}

func TestStreamSurfacesInterrupt(t *testing.T) {
	app, err := approvalGraph().Compile()
	require.NoError(t, err)

	var done StreamEvent[map[string]any]
	for ev := range app.Stream(context.Background(), map[string]any{}, WithInterruptBefore("submit"), StreamModeValues) {
		if ev.Type == StreamEventDone {
			done = ev
		}
	}

	var gi *GraphInterrupt
	require.ErrorAs(t, done.Err, &gi)
	assert.Equal(t, "submit", gi.Node)
	assert.Equal(t, "refund request", done.State["draft"])
}
