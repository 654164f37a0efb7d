// Package prebuilt provides ready-made orchestration patterns on top of the
// graph package.
//
// Four patterns ship with the package:
//
//   - Tool loop: Tool, ToolNode and ToolsCondition implement the classic
//     agent loop where an agent node emits tool calls, a tools node executes
//     them and the conversation cycles until no calls remain.
//
//   - Supervisor: CreateSupervisor builds a hub-and-spoke graph. A central
//     node consults a RouteFunc after every member turn and dispatches the
//     next member until the route returns Finish. An optional turn cap guards
//     against routing loops.
//
//   - Handoff: CreateHandoffGraph builds a star graph of peer agents. An
//     entry router reads the "active_agent" baton from the state and jumps to
//     whoever holds it; agents pass the baton with Transfer or end the turn
//     with Reply. With a checkpoint store the baton persists across turns.
//
//   - Plan-and-execute: CreatePlanExecuteAgent wires the planner / executor /
//     replanner loop: plan the objective into steps, run the first pending
//     step, then revise the remaining plan or finish with a response.
//
// All patterns are decision-function driven: the caller supplies plain Go
// functions for routing, handling and planning, which keeps the graphs
// deterministic and easy to test.
package prebuilt
