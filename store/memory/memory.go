package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/flowgraph-dev/flowgraph/store"
)

// MemoryCheckpointStore keeps checkpoints in process memory. It is safe for
// concurrent use. Contents are lost when the process exits.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint // by checkpoint ID
	threads     map[string][]string          // thread ID -> checkpoint IDs in save order
}

var _ store.CheckpointStore = (*MemoryCheckpointStore)(nil)
var _ store.LatestGetter = (*MemoryCheckpointStore)(nil)

// NewMemoryCheckpointStore creates an empty in-memory checkpoint store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
		threads:     make(map[string][]string),
	}
}

// Save stores a checkpoint.
func (s *MemoryCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *checkpoint
	if _, exists := s.checkpoints[cp.ID]; !exists {
		s.threads[cp.ThreadID] = append(s.threads[cp.ThreadID], cp.ID)
	}
	s.checkpoints[cp.ID] = &cp
	return nil
}

// Load retrieves a checkpoint by ID.
func (s *MemoryCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[checkpointID]
	if !ok {
		return nil, fmt.Errorf("checkpoint not found: %s", checkpointID)
	}
	out := *cp
	return &out, nil
}

// List returns all checkpoints for a thread, ordered by ascending version.
func (s *MemoryCheckpointStore) List(_ context.Context, threadID string) ([]*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.threads[threadID]
	out := make([]*store.Checkpoint, 0, len(ids))
	for _, id := range ids {
		if cp, ok := s.checkpoints[id]; ok {
			c := *cp
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// GetLatestByThread returns the newest checkpoint of a thread, or nil when
// the thread has none.
func (s *MemoryCheckpointStore) GetLatestByThread(_ context.Context, threadID string) (*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *store.Checkpoint
	for _, id := range s.threads[threadID] {
		cp, ok := s.checkpoints[id]
		if !ok {
			continue
		}
		if latest == nil || cp.Version > latest.Version {
			latest = cp
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

// Delete removes a checkpoint.
func (s *MemoryCheckpointStore) Delete(_ context.Context, checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, ok := s.checkpoints[checkpointID]
	if !ok {
		return fmt.Errorf("checkpoint not found: %s", checkpointID)
	}
	delete(s.checkpoints, checkpointID)

	ids := s.threads[cp.ThreadID]
	for i, id := range ids {
		if id == checkpointID {
			s.threads[cp.ThreadID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes all checkpoints for a thread.
func (s *MemoryCheckpointStore) Clear(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.threads[threadID] {
		delete(s.checkpoints, id)
	}
	delete(s.threads, threadID)
	return nil
}
