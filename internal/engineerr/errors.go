// Package engineerr defines the engine's error taxonomy (§7): WiringError,
// BindingError, NodeError, SchedulingError, ConcurrencyError, and
// InternalError. Only NodeError is ever routed to a data path (a node's
// error_output); every other kind unwinds the engine.
package engineerr

import (
	"fmt"
	"runtime"
)

// WiringError is raised during graph construction when schemas don't
// match or a required input is left unwired. Not recoverable; surfaced to
// the host before run begins.
type WiringError struct {
	Path   string
	Reason string
}

func (e *WiringError) Error() string {
	return fmt.Sprintf("wiring error at %s: %s", e.Path, e.Reason)
}

// BindingError is raised by bind when an invalid schema match is
// attempted at runtime — usually caught earlier, at wiring.
type BindingError struct {
	Input  string
	Reason string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("binding error for input %q: %s", e.Input, e.Reason)
}

// NodeError wraps a panic/error raised during a node's eval. When the
// node has capture_exception set, this is written to error_output instead
// of propagating; otherwise it is re-raised with Path/Signature filled in
// as it unwinds (§7 propagation policy).
type NodeError struct {
	Path      string
	Signature string
	Traceback []string
	Cause     error
}

func (e *NodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("node error: %v", e.Cause)
	}
	return fmt.Sprintf("node error at %s (%s): %v", e.Path, e.Signature, e.Cause)
}

func (e *NodeError) Unwrap() error { return e.Cause }

// CaptureTraceback walks the current call stack via runtime.Callers and
// renders up to depth frames as "func (file:line)" strings, skipping this
// function's own frame (§12: "captures a bounded slice of runtime.Frame
// via runtime.Callers, truncated to trace_back_depth").
func CaptureTraceback(depth int) []string {
	if depth <= 0 {
		depth = 1
	}
	pcs := make([]uintptr, depth+4)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	out := make([]string, 0, depth)
	for len(out) < depth {
		frame, more := frames.Next()
		out = append(out, fmt.Sprintf("%s (%s:%d)", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return out
}

// SchedulingError reports an invalid scheduler operation — scheduling on
// the wall clock without a tag, or cancelling an alarm in simulation
// mode. Always fatal.
type SchedulingError struct {
	Reason string
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("scheduling error: %s", e.Reason)
}

// ConcurrencyError reports misuse of push nodes outside real-time mode,
// or concurrent use of a simulation clock across threads. Fatal.
type ConcurrencyError struct {
	Reason string
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrency error: %s", e.Reason)
}

// InternalError reports an invariant violation (e.g. overlay and value
// structure out of sync). Fatal; the engine aborts the cycle.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Reason)
}
