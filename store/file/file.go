package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/flowgraph-dev/flowgraph/store"
)

// FileCheckpointStore persists each checkpoint as one JSON file under a root
// directory, grouped per thread. Suitable for local tooling and tutorials;
// not for concurrent writers across processes.
type FileCheckpointStore struct {
	mu   sync.Mutex
	root string
}

var _ store.CheckpointStore = (*FileCheckpointStore)(nil)

// NewFileCheckpointStore creates a file-based checkpoint store rooted at
// path, creating the directory if needed.
func NewFileCheckpointStore(path string) (*FileCheckpointStore, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &FileCheckpointStore{root: path}, nil
}

func (s *FileCheckpointStore) threadDir(threadID string) string {
	return filepath.Join(s.root, sanitize(threadID))
}

func (s *FileCheckpointStore) checkpointPath(threadID, checkpointID string) string {
	return filepath.Join(s.threadDir(threadID), sanitize(checkpointID)+".json")
}

// Save stores a checkpoint.
func (s *FileCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.threadDir(checkpoint.ThreadID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create thread directory: %w", err)
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	path := s.checkpointPath(checkpoint.ThreadID, checkpoint.ID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint by ID, scanning all threads.
func (s *FileCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := sanitize(checkpointID) + ".json"
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(s.root, entry.Name(), name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return readCheckpoint(path)
	}
	return nil, fmt.Errorf("checkpoint not found: %s", checkpointID)
}

// List returns all checkpoints for a thread, ordered by ascending version.
func (s *FileCheckpointStore) List(_ context.Context, threadID string) ([]*store.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.threadDir(threadID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read thread directory: %w", err)
	}

	var checkpoints []*store.Checkpoint
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		cp, err := readCheckpoint(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		checkpoints = append(checkpoints, cp)
	}

	sort.Slice(checkpoints, func(i, j int) bool { return checkpoints[i].Version < checkpoints[j].Version })
	return checkpoints, nil
}

// Delete removes a checkpoint.
func (s *FileCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	cp, err := s.Load(ctx, checkpointID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return os.Remove(s.checkpointPath(cp.ThreadID, cp.ID))
}

// Clear removes all checkpoints for a thread.
func (s *FileCheckpointStore) Clear(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.threadDir(threadID)); err != nil {
		return fmt.Errorf("failed to clear thread: %w", err)
	}
	return nil
}

func readCheckpoint(path string) (*store.Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	var cp store.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// sanitize keeps IDs filesystem-safe.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}
