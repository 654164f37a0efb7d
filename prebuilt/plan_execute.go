package prebuilt

import (
	"context"
	"fmt"

	"github.com/flowgraph-dev/flowgraph/graph"
	"github.com/flowgraph-dev/flowgraph/log"
)

// StepResult records one executed plan step and its outcome.
type StepResult struct {
	Step   string
	Result string
}

// Planner turns the objective into an ordered list of steps.
type Planner func(ctx context.Context, input string) ([]string, error)

// Executor performs the current step. It sees every past step so results can
// build on each other.
type Executor func(ctx context.Context, task string, pastSteps []StepResult) (string, error)

// Replan is the replanner's verdict: either a final response, or the
// remaining steps to run.
type Replan struct {
	// Response is the final answer. Non-empty ends the run.
	Response string

	// Plan is the remaining step list when the run continues.
	Plan []string
}

// Replanner reviews progress after each step and shrinks or rewrites the
// plan, or finishes with a response.
type Replanner func(ctx context.Context, input string, plan []string, pastSteps []StepResult) (*Replan, error)

// CreatePlanExecuteAgent builds the planner / executor / replanner loop. The
// state carries the objective under "input", the pending step stack under
// "plan", accumulated step results under "past_steps" and the final answer
// under "response".
func CreatePlanExecuteAgent(planner Planner, executor Executor, replanner Replanner) (*graph.Runnable[map[string]any], error) {
	if planner == nil || executor == nil || replanner == nil {
		return nil, fmt.Errorf("plan-execute: planner, executor and replanner are all required")
	}

	workflow := graph.NewStateGraph[map[string]any]()

	schema := graph.NewMapSchema()
	schema.RegisterReducer("past_steps", graph.AppendReducer)
	workflow.SetSchema(schema)

	workflow.AddNode("planner", "Plan the objective into steps", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		input, _ := state["input"].(string)
		if input == "" {
			return nil, fmt.Errorf("plan-execute: state has no input")
		}

		steps, err := planner(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("planner failed: %w", err)
		}
		if len(steps) == 0 {
			return nil, fmt.Errorf("planner produced an empty plan")
		}

		log.Debug("plan-execute: initial plan has %d steps", len(steps))
		return map[string]any{"plan": steps}, nil
	})

	workflow.AddNode("executor", "Execute the first pending step", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		plan, _ := state["plan"].([]string)
		if len(plan) == 0 {
			return nil, fmt.Errorf("executor reached with an empty plan")
		}
		task := plan[0]

		result, err := executor(ctx, task, pastSteps(state))
		if err != nil {
			return nil, fmt.Errorf("executor failed on %q: %w", task, err)
		}

		return map[string]any{
			"past_steps": []StepResult{{Step: task, Result: result}},
		}, nil
	})

	workflow.AddNode("replanner", "Review progress and update the plan", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		input, _ := state["input"].(string)
		plan, _ := state["plan"].([]string)

		verdict, err := replanner(ctx, input, plan, pastSteps(state))
		if err != nil {
			return nil, fmt.Errorf("replanner failed: %w", err)
		}
		if verdict == nil {
			return nil, fmt.Errorf("replanner returned no verdict")
		}

		if verdict.Response != "" {
			return map[string]any{
				"response": verdict.Response,
				"plan":     []string{},
			}, nil
		}
		if len(verdict.Plan) == 0 {
			return nil, fmt.Errorf("replanner returned an empty plan without a response")
		}
		return map[string]any{"plan": verdict.Plan}, nil
	})

	workflow.AddEdge(graph.START, "planner")
	workflow.AddEdge("planner", "executor")
	workflow.AddEdge("executor", "replanner")

	workflow.AddConditionalEdge("replanner", func(_ context.Context, state map[string]any) string {
		if resp, _ := state["response"].(string); resp != "" {
			return graph.END
		}
		return "executor"
	})

	return workflow.Compile()
}

// pastSteps reads the accumulated step results, tolerating the []any shape
// the append reducer may produce.
func pastSteps(state map[string]any) []StepResult {
	switch v := state["past_steps"].(type) {
	case []StepResult:
		return v
	case []any:
		out := make([]StepResult, 0, len(v))
		for _, e := range v {
			if sr, ok := e.(StepResult); ok {
				out = append(out, sr)
			}
		}
		return out
	default:
		return nil
	}
}
