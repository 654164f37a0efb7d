package graph

import "fmt"

// NodeInterrupt is returned when a node requests an interrupt (e.g. waiting
// for human input) via Interrupt.
type NodeInterrupt struct {
	// Node is the name of the node that triggered the interrupt.
	Node string
	// Value is the data/query provided by the interrupt.
	Value any
}

func (e *NodeInterrupt) Error() string {
	return fmt.Sprintf("interrupt at node %s: %v", e.Node, e.Value)
}

// GraphInterrupt is returned by Invoke when execution is suspended, either by
// an InterruptBefore/InterruptAfter configuration or by a dynamic Interrupt
// call inside a node. The run can be resumed with Config.ResumeFrom and,
// for dynamic interrupts, Config.ResumeValue.
type GraphInterrupt struct {
	// Node that caused the interruption.
	Node string
	// State at the time of interruption.
	State any
	// NextNodes that are pending when execution resumes.
	NextNodes []string
	// InterruptValue is the value provided by the dynamic interrupt (if any).
	InterruptValue any
}

func (e *GraphInterrupt) Error() string {
	if e.InterruptValue != nil {
		return fmt.Sprintf("graph interrupted at node %s with value: %v", e.Node, e.InterruptValue)
	}
	return fmt.Sprintf("graph interrupted at node %s", e.Node)
}
