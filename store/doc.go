// Package store defines the checkpoint model and storage interface used to
// persist graph executions.
//
// A Checkpoint captures the state of a graph run after a superstep: the merged
// state object, the nodes that just ran, the nodes scheduled to run next, and
// bookkeeping metadata. Stores index checkpoints by thread ID so that a
// conversation or workflow can be resumed across processes.
//
// The store package ships several interchangeable backends:
//   - memory: in-process map, for tests and short-lived programs
//   - file: one JSON file per checkpoint, for local tooling
//   - sqlite: lightweight embedded database
//   - postgres: production-grade relational storage
//   - redis: low-latency distributed storage with optional TTL
//
// All backends implement the same interface:
//
//	type CheckpointStore interface {
//	    Save(ctx context.Context, checkpoint *Checkpoint) error
//	    Load(ctx context.Context, checkpointID string) (*Checkpoint, error)
//	    List(ctx context.Context, threadID string) ([]*Checkpoint, error)
//	    Delete(ctx context.Context, checkpointID string) error
//	    Clear(ctx context.Context, threadID string) error
//	}
//
// List returns checkpoints in ascending version order. Backends that can
// answer "latest checkpoint for thread" cheaply also implement LatestGetter;
// the Latest helper falls back to List otherwise.
package store
