package prebuilt

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listPlanner(steps ...string) Planner {
	return func(_ context.Context, _ string) ([]string, error) {
		return steps, nil
	}
}

func echoExecutor(_ context.Context, task string, _ []StepResult) (string, error) {
	return "done: " + task, nil
}

// popReplanner removes the first step each round and answers once the plan
// is exhausted.
func popReplanner(_ context.Context, _ string, plan []string, past []StepResult) (*Replan, error) {
	remaining := plan[1:]
	if len(remaining) == 0 {
		results := make([]string, 0, len(past))
		for _, p := range past {
			results = append(results, p.Result)
		}
		return &Replan{Response: strings.Join(results, "; ")}, nil
	}
	return &Replan{Plan: remaining}, nil
}

func TestPlanExecuteRunsAllSteps(t *testing.T) {
	app, err := CreatePlanExecuteAgent(
		listPlanner("measure the room", "buy paint", "paint the wall"),
		echoExecutor,
		popReplanner,
	)
	require.NoError(t, err)

	final, err := app.Invoke(context.Background(), map[string]any{
		"input": "repaint the living room",
	})
	require.NoError(t, err)

	resp, _ := final["response"].(string)
	assert.Equal(t, "done: measure the room; done: buy paint; done: paint the wall", resp)

	past := pastSteps(final)
	require.Len(t, past, 3)
	assert.Equal(t, "measure the room", past[0].Step)
	assert.Equal(t, "paint the wall", past[2].Step)

	plan, _ := final["plan"].([]string)
	assert.Empty(t, plan)
}

func TestPlanExecuteExecutorSeesHistory(t *testing.T) {
	var seen [][]StepResult
	executor := func(_ context.Context, task string, past []StepResult) (string, error) {
		seen = append(seen, past)
		return "ok " + task, nil
	}

	app, err := CreatePlanExecuteAgent(listPlanner("a", "b"), executor, popReplanner)
	require.NoError(t, err)

	_, err = app.Invoke(context.Background(), map[string]any{"input": "goal"})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Empty(t, seen[0])
	require.Len(t, seen[1], 1)
	assert.Equal(t, "a", seen[1][0].Step)
	assert.Equal(t, "ok a", seen[1][0].Result)
}

func TestPlanExecuteReplannerCanRewritePlan(t *testing.T) {
	// After the first step the replanner discovers an extra prerequisite.
	calls := 0
	replanner := func(_ context.Context, _ string, plan []string, past []StepResult) (*Replan, error) {
		calls++
		if calls == 1 {
			return &Replan{Plan: []string{"unexpected prerequisite", plan[1]}}, nil
		}
		return popReplanner(context.Background(), "", plan, past)
	}

	app, err := CreatePlanExecuteAgent(listPlanner("first", "second"), echoExecutor, replanner)
	require.NoError(t, err)

	final, err := app.Invoke(context.Background(), map[string]any{"input": "goal"})
	require.NoError(t, err)

	past := pastSteps(final)
	require.Len(t, past, 3)
	assert.Equal(t, "first", past[0].Step)
	assert.Equal(t, "unexpected prerequisite", past[1].Step)
	assert.Equal(t, "second", past[2].Step)
}

func TestPlanExecutePlannerFailure(t *testing.T) {
	failing := func(_ context.Context, _ string) ([]string, error) {
		return nil, fmt.Errorf("cannot plan")
	}
	app, err := CreatePlanExecuteAgent(failing, echoExecutor, popReplanner)
	require.NoError(t, err)

	_, err = app.Invoke(context.Background(), map[string]any{"input": "goal"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner failed")
}

func TestPlanExecuteEmptyPlanRejected(t *testing.T) {
	app, err := CreatePlanExecuteAgent(listPlanner(), echoExecutor, popReplanner)
	require.NoError(t, err)

	_, err = app.Invoke(context.Background(), map[string]any{"input": "goal"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty plan")
}

func TestPlanExecuteMissingInput(t *testing.T) {
	app, err := CreatePlanExecuteAgent(listPlanner("a"), echoExecutor, popReplanner)
	require.NoError(t, err)

	_, err = app.Invoke(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input")
}

func TestPlanExecuteValidation(t *testing.T) {
	_, err := CreatePlanExecuteAgent(nil, echoExecutor, popReplanner)
	assert.Error(t, err)
}
