package node

import (
	"fmt"

	"tsengine/internal/engineerr"
	"tsengine/internal/engtime"
)

// Notify implements overlay.Observer: enqueues this node at
// max(t, current_evaluation_time) via the graph priority queue (§4.4.4).
// This goes through NotifyAt rather than Schedule: an upstream write
// during the current tick notifies at t == evaluation_time, and Schedule's
// self-reschedule guard would silently drop that, leaving this node out
// of the current tick's batch entirely.
func (n *Node) Notify(t engtime.Time) {
	eval := n.clock.EvaluationTime()
	n.scheduler.NotifyAt(engtime.Max(t, eval))
}

// NotifyNextCycle schedules this node at evaluation_time + MIN_STEP
// (§4.4.4).
func (n *Node) NotifyNextCycle() {
	eval := n.clock.EvaluationTime()
	n.scheduler.Schedule(eval.Add(engtime.MinStep), "", eval)
}

// shouldEval implements the §4.4.3 decision table. headTag is the tag
// under which this node was popped from its own scheduler head for the
// current tick ("" when arriving purely via Notify from an upstream
// write).
func (n *Node) shouldEval(t engtime.Time, headTag string) bool {
	for name := range n.validInputsSubset() {
		in, ok := n.inputs[name]
		if !ok || !in.Valid() {
			return false
		}
	}
	for name := range n.opts.AllValidInputs {
		in, ok := n.inputs[name]
		if !ok || !in.AllValid() {
			return false
		}
	}
	if n.opts.UsesScheduler && headTag == "" {
		return n.anyActiveInputModified(t)
	}
	return true
}

// validInputsSubset returns opts.ValidInputsSet, defaulting to every
// non-context input when unset (§6.2 "default = all non-context").
func (n *Node) validInputsSubset() map[string]bool {
	if n.opts.ValidInputsSet != nil {
		return n.opts.ValidInputsSet
	}
	out := make(map[string]bool, len(n.inputName))
	for _, name := range n.inputName {
		if !n.opts.ContextInputs[name] {
			out[name] = true
		}
	}
	return out
}

func (n *Node) anyActiveInputModified(t engtime.Time) bool {
	for name, in := range n.inputs {
		if n.isActive(name) && in.Modified(t) {
			return true
		}
	}
	return false
}

// Eval runs the §4.4.3 protocol for tick t: before/after-eval callbacks,
// the should_eval gate, user code, error capture, and the scheduler
// advance. headTag is the tag this node's head carried when it was
// popped for this tick (see shouldEval).
func (n *Node) Eval(t engtime.Time, headTag string) error {
	if n.state != Started {
		return &engineerr.InternalError{Reason: fmt.Sprintf("eval called on node %s in state %s", n.path, n.state)}
	}

	if n.shouldEval(t, headTag) {
		n.fireBeforeEval(t)
		err := n.runUser(t)
		if err != nil && n.opts.CaptureException {
			n.captureError(t, err)
		}
		n.fireAfterEval(t)

		if err != nil && !n.opts.CaptureException {
			depth := n.opts.TraceBackDepth
			if depth <= 0 {
				depth = defaultTraceDepth
			}
			return &engineerr.NodeError{
				Path:      n.path,
				Signature: n.signature,
				Cause:     err,
				Traceback: engineerr.CaptureTraceback(depth),
			}
		}
	}

	n.scheduler.Advance(t)
	return nil
}

func (n *Node) runUser(t engtime.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = rerr
			} else {
				err = fmt.Errorf("panic: %v", r)
			}
		}
	}()
	if n.subgraph != nil {
		if serr := n.subgraph.RunAt(t); serr != nil {
			return serr
		}
	}
	if n.eval != nil {
		return n.eval(n, t)
	}
	return nil
}

func (n *Node) fireBeforeEval(t engtime.Time) {
	for _, f := range n.beforeEval {
		f(n, t)
	}
}

func (n *Node) fireAfterEval(t engtime.Time) {
	for _, f := range n.afterEval {
		f(n, t)
	}
}
