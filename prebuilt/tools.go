package prebuilt

import (
	"context"
	"fmt"

	"github.com/flowgraph-dev/flowgraph/graph"
)

// Tool is a named operation an agent can request through a tool call.
type Tool interface {
	// Name returns the tool's unique name.
	Name() string

	// Description explains what the tool does.
	Description() string

	// Call executes the tool with the given arguments.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// FuncTool wraps a plain function as a Tool.
type FuncTool struct {
	name        string
	description string
	fn          func(ctx context.Context, args map[string]any) (string, error)
}

var _ Tool = (*FuncTool)(nil)

// NewTool creates a Tool from a function.
func NewTool(name, description string, fn func(ctx context.Context, args map[string]any) (string, error)) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		fn:          fn,
	}
}

// Name returns the tool's name.
func (t *FuncTool) Name() string { return t.name }

// Description returns the tool's description.
func (t *FuncTool) Description() string { return t.description }

// Call executes the wrapped function.
func (t *FuncTool) Call(ctx context.Context, args map[string]any) (string, error) {
	return t.fn(ctx, args)
}

// ToolNode executes the tool calls of the last assistant message and emits
// one tool message per call. Add it as the "tools" node of an agent loop and
// route to it with ToolsCondition.
type ToolNode struct {
	tools map[string]Tool
}

// NewToolNode creates a ToolNode over the given tools.
func NewToolNode(tools ...Tool) *ToolNode {
	m := make(map[string]Tool, len(tools))
	for _, t := range tools {
		m[t.Name()] = t
	}
	return &ToolNode{tools: m}
}

// Tools returns the registered tools.
func (n *ToolNode) Tools() []Tool {
	out := make([]Tool, 0, len(n.tools))
	for _, t := range n.tools {
		out = append(out, t)
	}
	return out
}

// Execute runs every pending tool call and returns the tool messages as a
// state update. Unknown tool names produce an error tool message rather than
// failing the run, so the agent can recover.
func (n *ToolNode) Execute(ctx context.Context, state map[string]any) (map[string]any, error) {
	last, ok := graph.LastMessage(state, "messages")
	if !ok {
		return nil, fmt.Errorf("tool node: no messages in state")
	}
	if len(last.ToolCalls) == 0 {
		return nil, fmt.Errorf("tool node: last message has no tool calls")
	}

	results := make([]graph.Message, 0, len(last.ToolCalls))
	for _, call := range last.ToolCalls {
		tool, ok := n.tools[call.Name]
		if !ok {
			results = append(results, graph.ToolMessage(call.ID, call.Name,
				fmt.Sprintf("error: unknown tool %q", call.Name)))
			continue
		}

		output, err := tool.Call(ctx, call.Args)
		if err != nil {
			results = append(results, graph.ToolMessage(call.ID, call.Name,
				fmt.Sprintf("error: %v", err)))
			continue
		}
		results = append(results, graph.ToolMessage(call.ID, call.Name, output))
	}

	return map[string]any{"messages": results}, nil
}

// ToolsCondition routes an agent loop: "tools" when the last assistant
// message requests tool calls, END otherwise. Pair it with a conditional
// edge out of the agent node.
func ToolsCondition(_ context.Context, state map[string]any) string {
	last, ok := graph.LastMessage(state, "messages")
	if !ok {
		return graph.END
	}
	if last.Role == graph.RoleAssistant && len(last.ToolCalls) > 0 {
		return "tools"
	}
	return graph.END
}
