package graph

import (
	"context"
	"sync"
)

// DefaultRecursionLimit bounds the number of supersteps in a single run when
// the config does not specify one. Cyclic graphs that fail to converge hit
// this limit instead of spinning forever.
const DefaultRecursionLimit = 25

// Config carries per-invocation settings for a compiled graph.
type Config struct {
	// Configurable holds free-form runtime values. The keys "thread_id" and
	// "checkpoint_id" are understood by checkpointable runnables.
	Configurable map[string]any

	// InterruptBefore lists nodes to pause before executing.
	InterruptBefore []string

	// InterruptAfter lists nodes to pause after executing.
	InterruptAfter []string

	// ResumeFrom names the nodes to start from instead of the entry point.
	// Set when resuming an interrupted run.
	ResumeFrom []string

	// ResumeValue is handed to the Interrupt call of a resumed node.
	ResumeValue any

	// RecursionLimit caps the number of supersteps. Zero means
	// DefaultRecursionLimit.
	RecursionLimit int

	// Tags and Metadata annotate the run for listeners and checkpoints.
	Tags     []string
	Metadata map[string]any
}

// WithThreadID creates a Config with the given thread_id set in the
// configurable map. This is the usual way to enable checkpoint-based
// conversation resumption.
//
// Example:
//
//	result, err := runnable.InvokeWithConfig(ctx, state, graph.WithThreadID("conversation-1"))
func WithThreadID(threadID string) *Config {
	return &Config{
		Configurable: map[string]any{
			"thread_id": threadID,
		},
	}
}

// WithInterruptBefore creates a Config with interrupt points before the
// specified nodes.
func WithInterruptBefore(nodes ...string) *Config {
	return &Config{
		InterruptBefore: nodes,
	}
}

// WithInterruptAfter creates a Config with interrupt points after the
// specified nodes.
func WithInterruptAfter(nodes ...string) *Config {
	return &Config{
		InterruptAfter: nodes,
	}
}

// ThreadID extracts the thread_id from the config, or "" when unset.
func (c *Config) ThreadID() string {
	if c == nil || c.Configurable == nil {
		return ""
	}
	tid, _ := c.Configurable["thread_id"].(string)
	return tid
}

func (c *Config) recursionLimit() int {
	if c == nil || c.RecursionLimit <= 0 {
		return DefaultRecursionLimit
	}
	return c.RecursionLimit
}

type configKey struct{}
type resumeValueKey struct{}
type sendPayloadKey struct{}

// WithConfig injects the invocation config into the context so node functions
// can read runtime values.
func WithConfig(ctx context.Context, config *Config) context.Context {
	return context.WithValue(ctx, configKey{}, config)
}

// GetConfig retrieves the invocation config from the context, or nil.
func GetConfig(ctx context.Context) *Config {
	config, _ := ctx.Value(configKey{}).(*Config)
	return config
}

// resumeValueBox holds the resume value for one run. Interrupt consumes it on
// first read so a later Interrupt in the same run pauses again instead of
// receiving a stale value.
type resumeValueBox struct {
	mu       sync.Mutex
	value    any
	consumed bool
}

// WithResumeValue adds a resume value to the context. The value is returned
// by the first Interrupt call of the resumed run and consumed in the process.
func WithResumeValue(ctx context.Context, value any) context.Context {
	return context.WithValue(ctx, resumeValueKey{}, &resumeValueBox{value: value})
}

// ResumeValue retrieves the resume value from the context without consuming
// it. Returns nil once Interrupt has taken the value.
func ResumeValue(ctx context.Context) any {
	box, _ := ctx.Value(resumeValueKey{}).(*resumeValueBox)
	if box == nil {
		return nil
	}
	box.mu.Lock()
	defer box.mu.Unlock()
	if box.consumed {
		return nil
	}
	return box.value
}

// takeResumeValue returns the resume value and marks it consumed.
func takeResumeValue(ctx context.Context) any {
	box, _ := ctx.Value(resumeValueKey{}).(*resumeValueBox)
	if box == nil {
		return nil
	}
	box.mu.Lock()
	defer box.mu.Unlock()
	if box.consumed {
		return nil
	}
	box.consumed = true
	return box.value
}

func withSendPayload(ctx context.Context, payload any) context.Context {
	return context.WithValue(ctx, sendPayloadKey{}, payload)
}

// SendPayload retrieves the payload of the Send packet that scheduled the
// current node, or nil when the node was reached through a regular edge.
func SendPayload(ctx context.Context) any {
	return ctx.Value(sendPayloadKey{})
}
