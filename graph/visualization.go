package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Exporter renders a graph definition in diagram formats.
type Exporter[S any] struct {
	graph *StateGraph[S]
}

// NewExporter creates a new graph exporter for the given graph.
func NewExporter[S any](graph *StateGraph[S]) *Exporter[S] {
	return &Exporter[S]{graph: graph}
}

// MermaidOptions defines configuration for Mermaid diagram generation.
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR").
	Direction string
}

// DrawMermaid generates a Mermaid diagram representation of the graph.
func (ge *Exporter[S]) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options.
func (ge *Exporter[S]) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	sb.WriteString(fmt.Sprintf("flowchart %s\n", direction))

	if ge.graph.entryPoint != "" {
		sb.WriteString("    START([\"START\"])\n")
		sb.WriteString("    style START fill:#90EE90\n")
		sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", ge.graph.entryPoint, ge.graph.entryPoint))
		sb.WriteString(fmt.Sprintf("    START --> %s\n", ge.graph.entryPoint))
	}

	nodeNames := make([]string, 0, len(ge.graph.nodes))
	for name := range ge.graph.nodes {
		if name != ge.graph.entryPoint {
			nodeNames = append(nodeNames, name)
		}
	}
	sort.Strings(nodeNames)

	for _, name := range nodeNames {
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", name, name))
	}

	if ge.referencesEnd() {
		sb.WriteString("    END([\"END\"])\n")
		sb.WriteString("    style END fill:#FFB6C1\n")
	}

	for _, edge := range ge.graph.edges {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", edge.From, edge.To))
	}

	conditionalFroms := make([]string, 0, len(ge.graph.conditionalEdges))
	for from := range ge.graph.conditionalEdges {
		conditionalFroms = append(conditionalFroms, from)
	}
	sort.Strings(conditionalFroms)
	for _, from := range conditionalFroms {
		sb.WriteString(fmt.Sprintf("    %s -.-> %s_condition{?}\n", from, from))
	}

	dispatchFroms := make([]string, 0, len(ge.graph.dispatchEdges))
	for from := range ge.graph.dispatchEdges {
		dispatchFroms = append(dispatchFroms, from)
	}
	sort.Strings(dispatchFroms)
	for _, from := range dispatchFroms {
		sb.WriteString(fmt.Sprintf("    %s -.->|fan-out| %s_dispatch((map))\n", from, from))
	}

	if ge.graph.entryPoint != "" {
		sb.WriteString(fmt.Sprintf("    style %s fill:#87CEEB\n", ge.graph.entryPoint))
	}

	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph.
func (ge *Exporter[S]) DrawDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=TD;\n")
	sb.WriteString("    node [shape=box];\n")

	if ge.graph.entryPoint != "" {
		sb.WriteString("    START [label=\"START\", shape=ellipse, style=filled, fillcolor=lightgreen];\n")
		sb.WriteString(fmt.Sprintf("    START -> %s;\n", ge.graph.entryPoint))
		sb.WriteString(fmt.Sprintf("    %s [style=filled, fillcolor=lightblue];\n", ge.graph.entryPoint))
	}

	if ge.referencesEnd() {
		sb.WriteString("    END [label=\"END\", shape=ellipse, style=filled, fillcolor=lightpink];\n")
	}

	for _, edge := range ge.graph.edges {
		sb.WriteString(fmt.Sprintf("    %s -> %s;\n", edge.From, edge.To))
	}

	froms := make([]string, 0, len(ge.graph.conditionalEdges))
	for from := range ge.graph.conditionalEdges {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		sb.WriteString(fmt.Sprintf("    %s -> %s_condition [style=dashed];\n", from, from))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func (ge *Exporter[S]) referencesEnd() bool {
	for _, edge := range ge.graph.edges {
		if edge.To == END {
			return true
		}
	}
	return false
}
