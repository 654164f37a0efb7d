package store

import (
	"context"
	"time"
)

// Checkpoint is an immutable snapshot of a run's state after a superstep.
// Checkpoints for one thread form a strictly increasing Version sequence;
// the newest one is what a resumed invocation rehydrates from.
type Checkpoint struct {
	// ID uniquely identifies the checkpoint.
	ID string `json:"id"`

	// ThreadID groups the checkpoints of one logical session.
	ThreadID string `json:"thread_id"`

	// NodeName is the node whose completion produced this snapshot. Empty
	// for snapshots written by manual state edits before any node ran.
	NodeName string `json:"node_name"`

	// Next lists the nodes pending when the snapshot was taken. Empty means
	// the run had completed.
	Next []string `json:"next"`

	// State is the merged graph state at snapshot time.
	State any `json:"state"`

	// Metadata carries free-form annotations (source, editor, tags).
	Metadata map[string]any `json:"metadata"`

	// Timestamp is when the snapshot was taken.
	Timestamp time.Time `json:"timestamp"`

	// Version is the snapshot's position in its thread, starting at 1.
	Version int `json:"version"`
}

// CheckpointStore is the persistence interface for checkpoints.
type CheckpointStore interface {
	// Save stores a checkpoint.
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves a checkpoint by ID.
	Load(ctx context.Context, checkpointID string) (*Checkpoint, error)

	// List returns all checkpoints for a thread, ordered by ascending version.
	List(ctx context.Context, threadID string) ([]*Checkpoint, error)

	// Delete removes a checkpoint.
	Delete(ctx context.Context, checkpointID string) error

	// Clear removes all checkpoints for a thread.
	Clear(ctx context.Context, threadID string) error
}

// LatestGetter is an optional fast path for stores that can resolve the
// newest checkpoint of a thread without listing everything.
type LatestGetter interface {
	GetLatestByThread(ctx context.Context, threadID string) (*Checkpoint, error)
}

// Latest returns the newest checkpoint for a thread, using the store's fast
// path when available. Returns nil when the thread has no checkpoints.
func Latest(ctx context.Context, s CheckpointStore, threadID string) (*Checkpoint, error) {
	if lg, ok := s.(LatestGetter); ok {
		return lg.GetLatestByThread(ctx, threadID)
	}

	checkpoints, err := s.List(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if len(checkpoints) == 0 {
		return nil, nil
	}

	latest := checkpoints[0]
	for _, cp := range checkpoints {
		if cp.Version > latest.Version {
			latest = cp
		}
	}
	return latest, nil
}

// NextVersion returns the version number the next checkpoint of the thread
// should carry.
func NextVersion(ctx context.Context, s CheckpointStore, threadID string) int {
	checkpoints, err := s.List(ctx, threadID)
	if err != nil {
		return 1
	}
	version := 1
	for _, cp := range checkpoints {
		if cp.Version >= version {
			version = cp.Version + 1
		}
	}
	return version
}
