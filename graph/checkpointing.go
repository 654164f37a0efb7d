package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flowgraph-dev/flowgraph/log"
	"github.com/flowgraph-dev/flowgraph/store"
	"github.com/flowgraph-dev/flowgraph/store/memory"
)

// Checkpoint is an alias for store.Checkpoint.
type Checkpoint = store.Checkpoint

// CheckpointStore is an alias for store.CheckpointStore.
type CheckpointStore = store.CheckpointStore

// NewMemoryCheckpointStore creates a new in-memory checkpoint store.
func NewMemoryCheckpointStore() store.CheckpointStore {
	return memory.NewMemoryCheckpointStore()
}

// CheckpointConfig configures checkpointing behavior.
type CheckpointConfig struct {
	// Store is the checkpoint storage backend.
	Store store.CheckpointStore

	// AutoSave enables a checkpoint after every superstep.
	AutoSave bool

	// MaxCheckpoints limits the checkpoints kept per thread. Zero keeps all.
	MaxCheckpoints int
}

// DefaultCheckpointConfig returns a default checkpoint configuration: an
// in-memory store with auto-save enabled.
func DefaultCheckpointConfig() CheckpointConfig {
	return CheckpointConfig{
		Store:    NewMemoryCheckpointStore(),
		AutoSave: true,
	}
}

// CheckpointableStateGraph extends StateGraph with checkpointing.
type CheckpointableStateGraph[S any] struct {
	*StateGraph[S]
	config CheckpointConfig
}

// NewCheckpointableStateGraph creates a checkpointable state graph backed by
// the default in-memory store.
func NewCheckpointableStateGraph[S any]() *CheckpointableStateGraph[S] {
	return &CheckpointableStateGraph[S]{
		StateGraph: NewStateGraph[S](),
		config:     DefaultCheckpointConfig(),
	}
}

// SetCheckpointConfig updates the checkpointing configuration.
func (g *CheckpointableStateGraph[S]) SetCheckpointConfig(config CheckpointConfig) {
	g.config = config
}

// CompileCheckpointable compiles the graph into a checkpointable runnable.
func (g *CheckpointableStateGraph[S]) CompileCheckpointable() (*CheckpointableRunnable[S], error) {
	runnable, err := g.StateGraph.Compile()
	if err != nil {
		return nil, err
	}
	return NewCheckpointableRunnable(runnable, g.config), nil
}

// checkpointListener persists a snapshot after every superstep. The thread it
// writes to is resolved from the invocation config in the context, so one
// listener serves concurrent runs.
type checkpointListener[S any] struct {
	cr *CheckpointableRunnable[S]
}

func (cl *checkpointListener[S]) OnNodeComplete(context.Context, string, S) {}

func (cl *checkpointListener[S]) OnStep(ctx context.Context, ran []string, next []string, state S) {
	if !cl.cr.config.AutoSave {
		return
	}

	threadID := GetConfig(ctx).ThreadID()
	if threadID == "" {
		threadID = cl.cr.executionID
	}

	cp := &store.Checkpoint{
		ID:        generateCheckpointID(),
		ThreadID:  threadID,
		NodeName:  strings.Join(ran, ","),
		Next:      next,
		State:     state,
		Timestamp: time.Now(),
		Version:   store.NextVersion(ctx, cl.cr.config.Store, threadID),
		Metadata: map[string]any{
			"source": "step",
		},
	}

	if err := cl.cr.config.Store.Save(ctx, cp); err != nil {
		log.Error("failed to save checkpoint for thread %s at version %d: %v", threadID, cp.Version, err)
		return
	}
	cl.cr.prune(ctx, threadID)
}

// CheckpointableRunnable wraps a Runnable with checkpoint persistence and
// thread-based resumption.
type CheckpointableRunnable[S any] struct {
	runnable    *Runnable[S]
	config      CheckpointConfig
	executionID string
}

// NewCheckpointableRunnable creates a checkpointable runnable from a compiled
// runnable.
func NewCheckpointableRunnable[S any](runnable *Runnable[S], config CheckpointConfig) *CheckpointableRunnable[S] {
	if config.Store == nil {
		config.Store = NewMemoryCheckpointStore()
	}
	cr := &CheckpointableRunnable[S]{
		runnable:    runnable,
		config:      config,
		executionID: generateExecutionID(),
	}
	runnable.AddListener(&checkpointListener[S]{cr: cr})
	return cr
}

// Invoke executes the graph with checkpointing support.
func (cr *CheckpointableRunnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	return cr.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig executes the graph with checkpointing. When the config
// carries a thread_id with existing checkpoints, the newest snapshot is
// rehydrated first: its state is merged with the new input through the
// schema, and execution continues from the snapshot's pending nodes, or
// from the entry point when the previous run had completed.
func (cr *CheckpointableRunnable[S]) InvokeWithConfig(ctx context.Context, initialState S, config *Config) (S, error) {
	state := initialState

	threadID := config.ThreadID()
	if threadID != "" && (config == nil || config.ResumeFrom == nil) {
		latest, err := store.Latest(ctx, cr.config.Store, threadID)
		if err == nil && latest != nil {
			if checkpointState, ok := latest.State.(S); ok {
				state = cr.mergeStates(checkpointState, initialState)
				if len(latest.Next) > 0 {
					if config == nil {
						config = &Config{}
					}
					config.ResumeFrom = latest.Next
				}
			}
		}
	}

	if config == nil {
		config = &Config{}
	}
	if config.Configurable == nil {
		config.Configurable = map[string]any{}
	}
	if config.ThreadID() == "" {
		config.Configurable["thread_id"] = cr.executionID
	}

	return cr.runnable.InvokeWithConfig(ctx, state, config)
}

// mergeStates merges a rehydrated checkpoint state with new input. With a
// schema the registered reducers apply; without one the input replaces the
// snapshot.
func (cr *CheckpointableRunnable[S]) mergeStates(checkpointState S, input S) S {
	if cr.runnable.graph.Schema == nil {
		return input
	}
	merged, err := cr.runnable.graph.Schema.Update(checkpointState, input)
	if err != nil {
		return input
	}
	return merged
}

// StateSnapshot is a view of a thread's latest (or a specific) checkpoint.
type StateSnapshot struct {
	// Values is the graph state recorded in the snapshot.
	Values any

	// Next lists the nodes pending when the snapshot was taken. Empty means
	// the run completed.
	Next []string

	// Config addresses this snapshot (thread_id, checkpoint_id).
	Config Config

	Metadata  map[string]any
	CreatedAt time.Time
}

// GetState retrieves the snapshot addressed by the config: a specific
// checkpoint_id if given, otherwise the newest checkpoint of the thread.
func (cr *CheckpointableRunnable[S]) GetState(ctx context.Context, config *Config) (*StateSnapshot, error) {
	threadID := config.ThreadID()
	if threadID == "" {
		threadID = cr.executionID
	}

	var checkpointID string
	if config != nil && config.Configurable != nil {
		checkpointID, _ = config.Configurable["checkpoint_id"].(string)
	}

	var checkpoint *store.Checkpoint
	var err error
	if checkpointID != "" {
		checkpoint, err = cr.config.Store.Load(ctx, checkpointID)
	} else {
		checkpoint, err = store.Latest(ctx, cr.config.Store, threadID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if checkpoint == nil {
		return nil, fmt.Errorf("no checkpoints found for thread %s", threadID)
	}

	return &StateSnapshot{
		Values: checkpoint.State,
		Next:   checkpoint.Next,
		Config: Config{
			Configurable: map[string]any{
				"thread_id":     threadID,
				"checkpoint_id": checkpoint.ID,
			},
		},
		Metadata:  checkpoint.Metadata,
		CreatedAt: checkpoint.Timestamp,
	}, nil
}

// UpdateState applies a manual state edit to a thread, as if asNode had just
// produced it: the values are merged through the schema and a new checkpoint
// is written whose pending nodes are asNode's successors. This is how a
// human-in-the-loop caller injects edits before resuming.
func (cr *CheckpointableRunnable[S]) UpdateState(ctx context.Context, config *Config, asNode string, values S) (*Config, error) {
	threadID := config.ThreadID()
	if threadID == "" {
		threadID = cr.executionID
	}

	var current S
	haveCurrent := false
	if snapshot, err := cr.GetState(ctx, config); err == nil {
		if s, ok := snapshot.Values.(S); ok {
			current = s
			haveCurrent = true
		}
	}
	if !haveCurrent && cr.runnable.graph.Schema != nil {
		current = cr.runnable.graph.Schema.Init()
	}

	newState := values
	if cr.runnable.graph.Schema != nil {
		var err error
		newState, err = cr.runnable.graph.Schema.Update(current, values)
		if err != nil {
			return nil, fmt.Errorf("failed to update state with schema: %w", err)
		}
	}

	var next []string
	if asNode != "" && asNode != END {
		next = cr.runnable.successors(ctx, asNode, newState)
	}

	checkpoint := &store.Checkpoint{
		ID:        generateCheckpointID(),
		ThreadID:  threadID,
		NodeName:  asNode,
		Next:      next,
		State:     newState,
		Timestamp: time.Now(),
		Version:   store.NextVersion(ctx, cr.config.Store, threadID),
		Metadata: map[string]any{
			"source":     "update_state",
			"updated_by": asNode,
		},
	}
	if err := cr.config.Store.Save(ctx, checkpoint); err != nil {
		return nil, err
	}

	return &Config{
		Configurable: map[string]any{
			"thread_id":     threadID,
			"checkpoint_id": checkpoint.ID,
		},
	}, nil
}

// ListCheckpoints lists all checkpoints of a thread (the default execution
// when threadID is empty).
func (cr *CheckpointableRunnable[S]) ListCheckpoints(ctx context.Context, threadID string) ([]*store.Checkpoint, error) {
	if threadID == "" {
		threadID = cr.executionID
	}
	return cr.config.Store.List(ctx, threadID)
}

// LoadCheckpoint loads a specific checkpoint.
func (cr *CheckpointableRunnable[S]) LoadCheckpoint(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	return cr.config.Store.Load(ctx, checkpointID)
}

// ClearCheckpoints removes all checkpoints for a thread.
func (cr *CheckpointableRunnable[S]) ClearCheckpoints(ctx context.Context, threadID string) error {
	if threadID == "" {
		threadID = cr.executionID
	}
	return cr.config.Store.Clear(ctx, threadID)
}

// Runnable exposes the wrapped runnable.
func (cr *CheckpointableRunnable[S]) Runnable() *Runnable[S] {
	return cr.runnable
}

// ExecutionID returns the fallback thread used when no thread_id is given.
func (cr *CheckpointableRunnable[S]) ExecutionID() string {
	return cr.executionID
}

// prune drops the oldest checkpoints beyond MaxCheckpoints.
func (cr *CheckpointableRunnable[S]) prune(ctx context.Context, threadID string) {
	if cr.config.MaxCheckpoints <= 0 {
		return
	}
	checkpoints, err := cr.config.Store.List(ctx, threadID)
	if err != nil || len(checkpoints) <= cr.config.MaxCheckpoints {
		return
	}
	for _, cp := range checkpoints[:len(checkpoints)-cr.config.MaxCheckpoints] {
		_ = cr.config.Store.Delete(ctx, cp.ID)
	}
}

func generateExecutionID() string {
	return fmt.Sprintf("exec_%d", time.Now().UnixNano())
}

func generateCheckpointID() string {
	return fmt.Sprintf("checkpoint_%s", uuid.New().String())
}
