package overlay

import "tsengine/internal/engtime"

// AddRefObserver registers a rebind callback to run when this Ref overlay's
// value changes (§4.3.3).
func (o Overlay) AddRefObserver(r *RefObserver) {
	n := o.node()
	n.refObservers = append(n.refObservers, r)
}

// RemoveRefObserver unregisters a previously added rebind callback.
func (o Overlay) RemoveRefObserver(r *RefObserver) {
	n := o.node()
	for i, existing := range n.refObservers {
		if existing == r {
			n.refObservers = append(n.refObservers[:i], n.refObservers[i+1:]...)
			return
		}
	}
}

// RefObserverCount reports how many rebind observers are registered.
func (o Overlay) RefObserverCount() int {
	return len(o.node().refObservers)
}

// NotifyRebind synchronously rebinds every registered observer (§4.3.3,
// §9 "Synchronous rebind through Ref observers"). This runs inside the
// writer's own call stack, before any scheduled dependents evaluate in
// the same tick.
func (o Overlay) NotifyRebind(t engtime.Time) {
	n := o.node()
	for _, r := range n.refObservers {
		r.Rebind(t)
	}
}

// SetBoundOutput stores an opaque handle to the output currently bound by
// this Ref element — used for Ref elements nested inside Map overlays
// (§3 overlay table: "optional bound output (for Ref elements inside
// maps)").
func (o Overlay) SetBoundOutput(v any) {
	o.node().boundOutput = v
}

// BoundOutput returns the opaque handle set by SetBoundOutput, or nil.
func (o Overlay) BoundOutput() any {
	return o.node().boundOutput
}
