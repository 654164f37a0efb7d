package graph

import "fmt"

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleHuman     MessageRole = "human"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
	RoleTool      MessageRole = "tool"
)

// ToolCall is a request, recorded on an assistant message, to run a named
// tool with arguments.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Message is a single entry in a conversation log. Workflows that thread a
// conversation through the graph keep a []Message under a state key managed
// by the AddMessages reducer.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`

	// Name tags the message with its producer (an agent or tool name).
	Name string `json:"name,omitempty"`

	// ToolCalls are pending tool requests attached to an assistant message.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool message back to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// HumanMessage builds a human-authored message.
func HumanMessage(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// AssistantMessage builds an assistant-authored message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// SystemMessage builds a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// ToolMessage builds a tool result message answering the given call.
func ToolMessage(callID, name, content string) Message {
	return Message{Role: RoleTool, Content: content, Name: name, ToolCallID: callID}
}

// AddMessages is the reducer for conversation keys: both sides are coerced to
// []Message and concatenated, so concurrent branches may append without
// clobbering each other.
func AddMessages(current, incoming any) (any, error) {
	curr, err := coerceMessages(current)
	if err != nil {
		return nil, err
	}
	in, err := coerceMessages(incoming)
	if err != nil {
		return nil, err
	}

	out := make([]Message, 0, len(curr)+len(in))
	out = append(out, curr...)
	out = append(out, in...)
	return out, nil
}

func coerceMessages(v any) ([]Message, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case []Message:
		return m, nil
	case Message:
		return []Message{m}, nil
	case []any:
		out := make([]Message, 0, len(m))
		for _, e := range m {
			msg, ok := e.(Message)
			if !ok {
				return nil, fmt.Errorf("messages value contains %T, want graph.Message", e)
			}
			out = append(out, msg)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("messages value is %T, want []graph.Message", v)
	}
}

// Messages extracts the []Message stored under key in a map state. Returns
// nil when the key is absent.
func Messages(state map[string]any, key string) []Message {
	msgs, _ := state[key].([]Message)
	return msgs
}

// LastMessage returns the final message under key, or a zero Message and
// false when the log is empty.
func LastMessage(state map[string]any, key string) (Message, bool) {
	msgs := Messages(state, key)
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}
