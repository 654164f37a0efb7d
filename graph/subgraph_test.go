package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticketState struct {
	Subject  string
	Category string
	Reply    string
}

func classificationChild() *StateGraph[map[string]any] {
	child := NewStateGraph[map[string]any]()

	child.AddNode("inspect", "", func(_ context.Context, state map[string]any) (map[string]any, error) {
		subject, _ := state["subject"].(string)
		category := "general"
		if strings.Contains(strings.ToLower(subject), "invoice") {
			category = "billing"
		}
		state["category"] = category
		return state, nil
	})
	child.AddEdge(START, "inspect")
	child.AddEdge("inspect", END)

	return child
}

func TestSubgraphWithStateConversion(t *testing.T) {
	parent := NewStateGraph[ticketState]()

	err := AddSubgraph(parent, "classify", classificationChild(),
		func(s ticketState) map[string]any {
			return map[string]any{"subject": s.Subject}
		},
		func(s ticketState, childResult map[string]any) ticketState {
			s.Category, _ = childResult["category"].(string)
			return s
		},
	)
	require.NoError(t, err)

	parent.AddNode("reply", "", func(_ context.Context, s ticketState) (ticketState, error) {
		s.Reply = "routed to " + s.Category
		return s, nil
	})
	parent.AddEdge(START, "classify")
	parent.AddEdge("classify", "reply")
	parent.AddEdge("reply", END)

	app, err := parent.Compile()
	require.NoError(t, err)

	final, err := app.Invoke(context.Background(), ticketState{Subject: "wrong invoice amount"})
	require.NoError(t, err)
	assert.Equal(t, "billing", final.Category)
	assert.Equal(t, "routed to billing", final.Reply)
}

func TestCreateSubgraphBuilder(t *testing.T) {
	parent := NewStateGraph[map[string]any]()

	err := CreateSubgraph(parent, "shout",
		func(child *StateGraph[map[string]any]) error {
			child.AddNode("upper", "", func(_ context.Context, state map[string]any) (map[string]any, error) {
				text, _ := state["text"].(string)
				state["text"] = strings.ToUpper(text)
				return state, nil
			})
			child.AddEdge(START, "upper")
			child.AddEdge("upper", END)
			return nil
		},
		func(s map[string]any) map[string]any { return s },
		func(_ map[string]any, childResult map[string]any) map[string]any { return childResult },
	)
	require.NoError(t, err)

	parent.AddEdge(START, "shout")
	parent.AddEdge("shout", END)

	app, err := parent.Compile()
	require.NoError(t, err)

	final, err := app.Invoke(context.Background(), map[string]any{"text": "quiet"})
	require.NoError(t, err)
	assert.Equal(t, "QUIET", final["text"])
}

func TestSubgraphCompileErrorSurfaces(t *testing.T) {
	parent := NewStateGraph[map[string]any]()
	broken := NewStateGraph[map[string]any]()

	err := AddSubgraph(parent, "broken", broken,
		func(s map[string]any) map[string]any { return s },
		func(_ map[string]any, r map[string]any) map[string]any { return r },
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEntryPointNotSet)
}

func TestRoutedSubgraphs(t *testing.T) {
	makeChild := func(tag string) *StateGraph[map[string]any] {
		child := NewStateGraph[map[string]any]()
		child.AddNode("handle", "", func(_ context.Context, state map[string]any) (map[string]any, error) {
			state["handled_by"] = tag
			return state, nil
		})
		child.AddEdge(START, "handle")
		child.AddEdge("handle", END)
		return child
	}

	parent := NewStateGraph[map[string]any]()
	err := AddRoutedSubgraphs(parent, "dispatch",
		func(s map[string]any) string {
			kind, _ := s["kind"].(string)
			return kind
		},
		map[string]*StateGraph[map[string]any]{
			"billing": makeChild("billing team"),
			"tech":    makeChild("tech team"),
		},
		func(s map[string]any) map[string]any { return s },
		func(_ map[string]any, r map[string]any) map[string]any { return r },
	)
	require.NoError(t, err)

	parent.AddEdge(START, "dispatch")
	parent.AddEdge("dispatch", END)

	app, err := parent.Compile()
	require.NoError(t, err)

	final, err := app.Invoke(context.Background(), map[string]any{"kind": "tech"})
	require.NoError(t, err)
	assert.Equal(t, "tech team", final["handled_by"])

	_, err = app.Invoke(context.Background(), map[string]any{"kind": "legal"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subgraph legal not found")
}
