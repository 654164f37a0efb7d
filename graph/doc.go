// Package graph implements a state-based workflow graph engine: named nodes
// compute partial updates over a shared typed state, edges (fixed,
// conditional, or dynamically dispatched) connect them, and a superstep
// execution loop runs the current frontier in parallel and merges results
// through per-key reducers.
//
// Build a graph, compile it, invoke it:
//
//	g := graph.NewStateGraph[map[string]any]()
//	g.AddNode("upper", "uppercase the sentence", upperNode)
//	g.AddNode("reverse", "reverse the sentence", reverseNode)
//	g.AddEdge(graph.START, "upper")
//	g.AddEdge("upper", "reverse")
//	g.AddEdge("reverse", graph.END)
//
//	app, err := g.Compile()
//	if err != nil {
//		// ...
//	}
//	final, err := app.Invoke(ctx, map[string]any{"sentence": "hello"})
//
// Conditional routing, Command jumps, Send fan-out, interrupts and
// checkpoint-based resumption are layered on the same loop; see the examples
// directory for one tutorial per concept.
package graph
