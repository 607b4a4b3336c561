package node

import (
	"fmt"

	"tsengine/internal/binding"
	"tsengine/internal/scheduler"
	"tsengine/internal/tsvalue"
)

// ErrWrongState reports a lifecycle call made outside its legal state.
type ErrWrongState struct {
	Path string
	From State
	Want string
}

func (e *ErrWrongState) Error() string {
	return fmt.Sprintf("node %s: cannot transition from %s (expected %s)", e.Path, e.From, e.Want)
}

// Initialise moves Created -> Initialised. Schema-mismatch detection
// happens at BindInput time; this only gates the state transition.
func (n *Node) Initialise() error {
	if n.state != Created {
		return &ErrWrongState{Path: n.path, From: n.state, Want: "Created"}
	}
	n.state = Initialised
	return nil
}

// BindInput wires input to output (§4.3). Call after Initialise, before
// Start. Binding happens with no observer — an input only starts
// receiving Notify calls once Start activates it.
func (n *Node) BindInput(inputName string, output *tsvalue.TSOutput) error {
	in, ok := n.inputs[inputName]
	if !ok {
		return fmt.Errorf("node %s: no such input %q", n.path, inputName)
	}
	return binding.Bind(in, output, nil)
}

// Start transitions Initialised -> Starting -> Started: it activates
// every input named in active_inputs (or all, if unset) by subscribing
// this node as their observer, then replays any pre-start "start" tag by
// notifying at the clock's current evaluation time (§4.4.2).
func (n *Node) Start() error {
	if n.state != Initialised {
		return &ErrWrongState{Path: n.path, From: n.state, Want: "Initialised"}
	}
	n.state = Starting

	for name, in := range n.inputs {
		if n.isActive(name) {
			binding.Activate(in, n)
		}
	}

	n.scheduler.MarkStarted()
	n.state = Started

	if n.scheduler.HasPendingStart() {
		t := n.clock.EvaluationTime()
		n.scheduler.PopTag(startTag)
		n.Notify(t)
	}
	return nil
}

// startTag mirrors the scheduler package's private pre-start sentinel.
const startTag = "start"

// Stop unconditionally unbinds every input (releasing references
// transitively) and resets the scheduler, even mid-error (§4.4.2
// "cleanup is unconditional").
func (n *Node) Stop() error {
	if n.state != Started {
		return &ErrWrongState{Path: n.path, From: n.state, Want: "Started"}
	}
	n.state = Stopping
	for _, in := range n.inputs {
		binding.Unbind(in)
	}
	n.scheduler = scheduler.New(n.index, n.onHeadChanged)
	n.state = Stopped
	return nil
}

// Dispose moves Stopped -> Disposed. No further lifecycle calls are legal.
func (n *Node) Dispose() error {
	if n.state != Stopped {
		return &ErrWrongState{Path: n.path, From: n.state, Want: "Stopped"}
	}
	n.state = Disposed
	return nil
}

func (n *Node) isActive(name string) bool {
	if n.opts.ActiveInputs == nil {
		return true
	}
	return n.opts.ActiveInputs[name]
}
