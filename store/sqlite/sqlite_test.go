package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph-dev/flowgraph/store"
)

func newTestStore(t *testing.T) *SqliteCheckpointStore {
	t.Helper()
	s, err := NewSqliteCheckpointStore(SqliteOptions{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSqliteCheckpointStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cp := &store.Checkpoint{
		ID:        "cp-1",
		ThreadID:  "thread-1",
		NodeName:  "node-a",
		Next:      []string{"node-b", "node-c"},
		State:     map[string]any{"topic": "cats", "count": 2},
		Metadata:  map[string]any{"source": "loop"},
		Timestamp: time.Now().UTC(),
		Version:   1,
	}

	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "cp-1", loaded.ID)
	assert.Equal(t, "thread-1", loaded.ThreadID)
	assert.Equal(t, "node-a", loaded.NodeName)
	assert.Equal(t, []string{"node-b", "node-c"}, loaded.Next)
	assert.Equal(t, 1, loaded.Version)

	state, ok := loaded.State.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cats", state["topic"])
	// JSON round-trip turns numbers into float64.
	assert.Equal(t, float64(2), state["count"])
}

func TestSqliteCheckpointStoreUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cp := &store.Checkpoint{
		ID:        "cp-1",
		ThreadID:  "thread-1",
		NodeName:  "node-a",
		State:     map[string]any{},
		Timestamp: time.Now().UTC(),
		Version:   1,
	}
	require.NoError(t, s.Save(ctx, cp))

	cp.NodeName = "node-b"
	cp.Version = 2
	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "node-b", loaded.NodeName)
	assert.Equal(t, 2, loaded.Version)

	list, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSqliteCheckpointStoreListOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"cp-c", "cp-a", "cp-b"} {
		cp := &store.Checkpoint{
			ID:        id,
			ThreadID:  "thread-1",
			State:     map[string]any{},
			Timestamp: time.Now().UTC(),
			Version:   3 - i,
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

func TestSqliteCheckpointStoreDeleteAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		cp := &store.Checkpoint{
			ID:        "cp-" + string(rune('0'+i)),
			ThreadID:  "thread-1",
			State:     map[string]any{},
			Timestamp: time.Now().UTC(),
			Version:   i,
		}
		require.NoError(t, s.Save(ctx, cp))
	}

	require.NoError(t, s.Delete(ctx, "cp-1"))
	_, err := s.Load(ctx, "cp-1")
	assert.Error(t, err)

	require.NoError(t, s.Clear(ctx, "thread-1"))
	list, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSqliteCheckpointStoreNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkpoint not found")
}
