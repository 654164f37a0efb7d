package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSchemaOverwriteByDefault(t *testing.T) {
	schema := NewMapSchema()

	state, err := schema.Update(map[string]any{"a": 1, "b": "old"}, map[string]any{"b": "new"})
	require.NoError(t, err)
	assert.Equal(t, 1, state["a"])
	assert.Equal(t, "new", state["b"])
}

func TestMapSchemaDoesNotMutateCurrent(t *testing.T) {
	schema := NewMapSchema()
	current := map[string]any{"a": 1}

	_, err := schema.Update(current, map[string]any{"a": 2})
	require.NoError(t, err)
	assert.Equal(t, 1, current["a"])
}

func TestAppendReducerVariants(t *testing.T) {
	t.Run("nil current takes incoming slice", func(t *testing.T) {
		out, err := AppendReducer(nil, []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, out)
	})

	t.Run("nil current wraps scalar", func(t *testing.T) {
		out, err := AppendReducer(nil, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, out)
	})

	t.Run("slice to slice", func(t *testing.T) {
		out, err := AppendReducer([]int{1, 2}, []int{3})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, out)
	})

	t.Run("scalar onto slice", func(t *testing.T) {
		out, err := AppendReducer([]int{1}, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, out)
	})

	t.Run("mismatched element types fall back to any", func(t *testing.T) {
		out, err := AppendReducer([]string{"a"}, []int{1})
		require.NoError(t, err)
		assert.Equal(t, []any{"a", 1}, out)
	})

	t.Run("nil incoming keeps current", func(t *testing.T) {
		out, err := AppendReducer([]string{"a"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, out)
	})

	t.Run("non-slice current errors", func(t *testing.T) {
		_, err := AppendReducer("not a slice", "a")
		assert.Error(t, err)
	})
}

func TestOverwriteReducer(t *testing.T) {
	out, err := OverwriteReducer("old", "new")
	require.NoError(t, err)
	assert.Equal(t, "new", out)
}

func TestRegisteredReducerFailurePropagates(t *testing.T) {
	schema := NewMapSchema()
	schema.RegisterReducer("log", AppendReducer)

	_, err := schema.Update(map[string]any{"log": 7}, map[string]any{"log": "entry"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reduce key log")
}
