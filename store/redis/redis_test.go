package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph-dev/flowgraph/store"
)

func newTestStore(t *testing.T) *RedisCheckpointStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s := NewRedisCheckpointStore(RedisOptions{Addr: mr.Addr()})
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRedisCheckpointStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cp := &store.Checkpoint{
		ID:        "cp-1",
		ThreadID:  "thread-1",
		NodeName:  "node-a",
		Next:      []string{"node-b"},
		State:     map[string]any{"foo": "bar"},
		Timestamp: time.Now().UTC(),
		Version:   1,
	}

	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "cp-1", loaded.ID)
	assert.Equal(t, "thread-1", loaded.ThreadID)
	assert.Equal(t, []string{"node-b"}, loaded.Next)

	state, ok := loaded.State.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bar", state["foo"])

	list, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cp-1", list[0].ID)

	require.NoError(t, s.Delete(ctx, "cp-1"))

	_, err = s.Load(ctx, "cp-1")
	assert.Error(t, err)

	list, err = s.List(ctx, "thread-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRedisCheckpointStoreListOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Saved out of order, the sorted-set index returns commit order.
	for _, v := range []int{2, 1, 3} {
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

func TestRedisCheckpointStoreClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"cp-1", "cp-2"} {
		cp := &store.Checkpoint{
			ID:        id,
			ThreadID:  "thread-1",
			State:     map[string]any{},
			Timestamp: time.Now().UTC(),
			Version:   1,
		}
		require.NoError(t, s.Save(ctx, cp))
	}

	require.NoError(t, s.Clear(ctx, "thread-1"))

	list, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRedisCheckpointStoreTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s := NewRedisCheckpointStore(RedisOptions{
		Addr: mr.Addr(),
		TTL:  time.Minute,
	})
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	cp := &store.Checkpoint{
		ID:        "cp-1",
		ThreadID:  "thread-1",
		State:     map[string]any{},
		Timestamp: time.Now().UTC(),
		Version:   1,
	}
	require.NoError(t, s.Save(ctx, cp))

	// Expired checkpoints disappear from Load and are skipped by List.
	mr.FastForward(2 * time.Minute)

	_, err = s.Load(ctx, "cp-1")
	assert.Error(t, err)

	list, err := s.List(ctx, "thread-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
