package graph

import (
	"context"
	"strings"
	"sync"
	"time"
)

// StreamMode selects which events a Stream call emits.
type StreamMode string

const (
	// StreamModeValues emits the full merged state after each superstep.
	StreamModeValues StreamMode = "values"

	// StreamModeUpdates emits the per-node state deltas as they complete.
	StreamModeUpdates StreamMode = "updates"
)

// StreamEventType discriminates stream events.
type StreamEventType string

const (
	// StreamEventUpdate carries one node's state delta (updates mode).
	StreamEventUpdate StreamEventType = "update"

	// StreamEventStep carries the merged state after a superstep (values mode).
	StreamEventStep StreamEventType = "step"

	// StreamEventDone is the final event of a run. Err is set when the run
	// failed or was interrupted.
	StreamEventDone StreamEventType = "done"
)

// StreamEvent is one observation of a streamed run.
type StreamEvent[S any] struct {
	Type StreamEventType

	// Node is the producing node (update events) or the nodes of the step
	// joined by commas (step events).
	Node string

	// State holds the delta (update events) or merged state (step events)
	// and the final state on done events.
	State S

	// Err is set on done events when the run failed. An interrupted run
	// surfaces its *GraphInterrupt here.
	Err error

	Timestamp time.Time
}

// streamListener forwards step events into a channel without blocking the
// run longer than the consumer takes to drain it.
type streamListener[S any] struct {
	mode   StreamMode
	events chan StreamEvent[S]
	mu     sync.Mutex
}

func (sl *streamListener[S]) OnNodeComplete(_ context.Context, node string, update S) {
	if sl.mode != StreamModeUpdates {
		return
	}
	sl.emit(StreamEvent[S]{
		Type:      StreamEventUpdate,
		Node:      node,
		State:     update,
		Timestamp: time.Now(),
	})
}

func (sl *streamListener[S]) OnStep(_ context.Context, ran []string, _ []string, state S) {
	if sl.mode != StreamModeValues {
		return
	}
	sl.emit(StreamEvent[S]{
		Type:      StreamEventStep,
		Node:      strings.Join(ran, ","),
		State:     state,
		Timestamp: time.Now(),
	})
}

func (sl *streamListener[S]) emit(ev StreamEvent[S]) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.events <- ev
}

// Stream executes the graph on a background goroutine and returns a channel
// of events in the requested mode. The channel is closed after the final
// done event, which carries the final state and any error.
func (r *Runnable[S]) Stream(ctx context.Context, initialState S, config *Config, mode StreamMode) <-chan StreamEvent[S] {
	events := make(chan StreamEvent[S], 64)
	listener := &streamListener[S]{mode: mode, events: events}

	// A fresh runnable view so the listener does not leak into other runs.
	run := &Runnable[S]{graph: r.graph, listeners: append([]StepListener[S]{listener}, r.listeners...)}

	go func() {
		defer close(events)
		final, err := run.InvokeWithConfig(ctx, initialState, config)
		events <- StreamEvent[S]{
			Type:      StreamEventDone,
			State:     final,
			Err:       err,
			Timestamp: time.Now(),
		}
	}()

	return events
}
