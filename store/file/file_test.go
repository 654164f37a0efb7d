package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph-dev/flowgraph/store"
)

func TestFileCheckpointStore(t *testing.T) {
	s, err := NewFileCheckpointStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	cp := &store.Checkpoint{
		ID:        "cp-1",
		ThreadID:  "thread-1",
		NodeName:  "node-a",
		Next:      []string{"node-b", "node-c"},
		State:     map[string]any{"topic": "cats"},
		Metadata:  map[string]any{"source": "loop"},
		Timestamp: time.Now().UTC(),
		Version:   1,
	}

	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "cp-1", loaded.ID)
	assert.Equal(t, "thread-1", loaded.ThreadID)
	assert.Equal(t, []string{"node-b", "node-c"}, loaded.Next)

	state, ok := loaded.State.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cats", state["topic"])

	list, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, "cp-1"))

	_, err = s.Load(ctx, "cp-1")
	assert.Error(t, err)
}

func TestFileCheckpointStoreListOrder(t *testing.T) {
	s, err := NewFileCheckpointStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	for _, v := range []int{3, 1, 2} {
		cp := &store.Checkpoint{
			ID:        "cp-" + string(rune('0'+v)),
			ThreadID:  "thread-1",
			State:     map[string]any{},
			Timestamp: time.Now().UTC(),
			Version:   v,
		}
		require.NoError(t, s.Save(ctx, cp))
	}

	list, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1, list[0].Version)
	assert.Equal(t, 2, list[1].Version)
	assert.Equal(t, 3, list[2].Version)
}

func TestFileCheckpointStoreClear(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileCheckpointStore(root)
	require.NoError(t, err)

	ctx := context.Background()
	cp := &store.Checkpoint{
		ID:        "cp-1",
		ThreadID:  "thread-1",
		State:     map[string]any{},
		Timestamp: time.Now().UTC(),
		Version:   1,
	}
	require.NoError(t, s.Save(ctx, cp))

	require.NoError(t, s.Clear(ctx, "thread-1"))

	list, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = os.Stat(filepath.Join(root, "thread-1"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileCheckpointStoreSanitizesIDs(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileCheckpointStore(root)
	require.NoError(t, err)

	ctx := context.Background()
	cp := &store.Checkpoint{
		ID:        "cp/../1",
		ThreadID:  "thread/evil",
		State:     map[string]any{},
		Timestamp: time.Now().UTC(),
		Version:   1,
	}
	require.NoError(t, s.Save(ctx, cp))

	// Everything stays under the root directory.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "thread_evil", entries[0].Name())

	loaded, err := s.Load(ctx, "cp/../1")
	require.NoError(t, err)
	assert.Equal(t, "cp/../1", loaded.ID)
}

func TestFileCheckpointStoreMissingThread(t *testing.T) {
	s, err := NewFileCheckpointStore(t.TempDir())
	require.NoError(t, err)

	list, err := s.List(context.Background(), "no-such-thread")
	require.NoError(t, err)
	assert.Empty(t, list)
}
