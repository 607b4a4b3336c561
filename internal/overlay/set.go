package overlay

import "tsengine/internal/engtime"

// checkSetDelta clears the added/removed buffers if they pertain to a time
// other than t — the "lazy cleanup" described in §4.2.2: no explicit
// per-cycle clear call is required, reads and writes both trigger it.
func (n *Node) checkSetDelta(t engtime.Time) {
	if n.deltaTime != t {
		n.addedIdx = nil
		n.removedIdx = nil
		n.removedVal = nil
		n.addedSet = nil
		n.removedSet = nil
		n.deltaTime = t
	}
}

// RecordAdded records that element index was added at time t (Set overlay).
func (o Overlay) RecordAdded(index int, t engtime.Time) {
	n := o.node()
	n.checkSetDelta(t)
	if n.addedSet == nil {
		n.addedSet = make(map[int]struct{})
	}
	if _, exists := n.addedSet[index]; exists {
		return
	}
	n.addedSet[index] = struct{}{}
	n.addedIdx = append(n.addedIdx, index)
}

// RecordRemoved records that element index (with the given removed value,
// buffered until the next modification at a different time) was removed at
// time t (Set overlay).
func (o Overlay) RecordRemoved(index int, t engtime.Time, value any) {
	n := o.node()
	n.checkSetDelta(t)
	if n.removedSet == nil {
		n.removedSet = make(map[int]struct{})
	}
	if _, exists := n.removedSet[index]; exists {
		return
	}
	n.removedSet[index] = struct{}{}
	n.removedIdx = append(n.removedIdx, index)
	n.removedVal = append(n.removedVal, value)
}

// HasDeltaAt reports whether this Set overlay has a recorded add/remove
// delta at time t; querying at a different time lazily clears stale
// buffers first (§4.2.2).
func (o Overlay) HasDeltaAt(t engtime.Time) bool {
	n := o.node()
	n.checkSetDelta(t)
	return len(n.addedIdx) > 0 || len(n.removedIdx) > 0
}

// AddedIndices returns the indices added in the current delta buffer.
func (o Overlay) AddedIndices() []int {
	return o.node().addedIdx
}

// RemovedIndices returns the indices removed in the current delta buffer.
func (o Overlay) RemovedIndices() []int {
	return o.node().removedIdx
}

// RemovedValues returns the buffered values for each removed index, in the
// same order as RemovedIndices.
func (o Overlay) RemovedValues() []any {
	return o.node().removedVal
}

// WasAdded reports whether index is present in the current added buffer.
func (o Overlay) WasAdded(index int) bool {
	_, ok := o.node().addedSet[index]
	return ok
}

// WasRemoved reports whether index is present in the current removed buffer.
func (o Overlay) WasRemoved(index int) bool {
	_, ok := o.node().removedSet[index]
	return ok
}
