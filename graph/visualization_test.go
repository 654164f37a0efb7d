package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diagramGraph() *StateGraph[map[string]any] {
	g := NewStateGraph[map[string]any]()

	passthrough := func(_ context.Context, s map[string]any) (map[string]any, error) { return s, nil }
	g.AddNode("classify", "", passthrough)
	g.AddNode("reply", "", passthrough)
	g.AddNode("escalate", "", passthrough)

	g.AddEdge(START, "classify")
	g.AddConditionalEdge("classify", func(_ context.Context, _ map[string]any) string { return "reply" })
	g.AddEdge("reply", END)
	g.AddEdge("escalate", END)

	return g
}

func TestDrawMermaid(t *testing.T) {
	out := NewExporter(diagramGraph()).DrawMermaid()

	assert.True(t, strings.HasPrefix(out, "flowchart TD\n"))
	assert.Contains(t, out, `START(["START"])`)
	assert.Contains(t, out, `classify[["classify"]]`)
	assert.Contains(t, out, "START --> classify")
	assert.Contains(t, out, `reply["reply"]`)
	assert.Contains(t, out, `END(["END"])`)
	assert.Contains(t, out, "reply --> END")
	assert.Contains(t, out, "classify -.-> classify_condition{?}")
}

func TestDrawMermaidDirection(t *testing.T) {
	out := NewExporter(diagramGraph()).DrawMermaidWithOptions(MermaidOptions{Direction: "LR"})
	assert.True(t, strings.HasPrefix(out, "flowchart LR\n"))
}

func TestDrawMermaidDispatch(t *testing.T) {
	g := diagramGraph()
	g.AddDispatchEdges("reply", func(_ context.Context, _ map[string]any) []Send { return nil })

	out := NewExporter(g).DrawMermaid()
	assert.Contains(t, out, "reply -.->|fan-out| reply_dispatch((map))")
}

func TestDrawDOT(t *testing.T) {
	out := NewExporter(diagramGraph()).DrawDOT()

	require.True(t, strings.HasPrefix(out, "digraph G {\n"))
	assert.Contains(t, out, "START -> classify;")
	assert.Contains(t, out, "reply -> END;")
	assert.Contains(t, out, "classify -> classify_condition [style=dashed];")
	assert.True(t, strings.HasSuffix(out, "}\n"))
}
