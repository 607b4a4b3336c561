package overlay

import "tsengine/internal/engtime"

func (n *Node) checkMapDelta(t engtime.Time) {
	if n.mapDeltaTime != t {
		n.mapAddedKeys = nil
		n.mapRemovedKeys = nil
		n.mapRemovedVals = nil
		n.mapDeltaTime = t
	}
}

// EnsureEntry returns the value overlay for key, allocating one (and a new
// Map entry) if it doesn't exist yet. The caller supplies the kind the
// value overlay should be shaped as.
func (o Overlay) EnsureEntry(key any, valueKind Kind) (entry Overlay, created bool) {
	n := o.node()
	if n.mapEntries == nil {
		n.mapEntries = make(map[any]Index)
	}
	if idx, ok := n.mapEntries[key]; ok {
		return Overlay{a: o.a, i: idx}, false
	}
	e := New(o.a, valueKind)
	e.SetParent(o)
	n.mapEntries[key] = e.i
	return e, true
}

// Entry returns the value overlay for key if present.
func (o Overlay) Entry(key any) (Overlay, bool) {
	n := o.node()
	idx, ok := n.mapEntries[key]
	if !ok {
		return Zero, false
	}
	return Overlay{a: o.a, i: idx}, true
}

// RemoveEntry deletes the map entry for key (the value overlay node itself
// stays arena-resident but is no longer reachable from this map).
func (o Overlay) RemoveEntry(key any) {
	delete(o.node().mapEntries, key)
}

// Size returns the number of live entries.
func (o Overlay) Size() int {
	return len(o.node().mapEntries)
}

// RecordKeyAdded records that key was added to the map at time t.
func (o Overlay) RecordKeyAdded(key any, t engtime.Time) {
	n := o.node()
	n.checkMapDelta(t)
	n.mapAddedKeys = append(n.mapAddedKeys, key)
	o.maybeToggleEmpty(t, true)
}

// RecordKeyRemoved records that key (with its buffered removed value) was
// removed from the map at time t. The removed value's own overlay
// (captured at §4.2.3/§4.3.4 call sites) is buffered until the next
// modification at a different time (§4.2.2).
func (o Overlay) RecordKeyRemoved(key any, value any, t engtime.Time) {
	n := o.node()
	n.checkMapDelta(t)
	n.mapRemovedKeys = append(n.mapRemovedKeys, key)
	n.mapRemovedVals = append(n.mapRemovedVals, value)
	o.maybeToggleEmpty(t, false)
}

// HasMapDeltaAt reports whether this Map overlay has a recorded key
// add/remove delta at time t, with lazy buffer cleanup on mismatch.
func (o Overlay) HasMapDeltaAt(t engtime.Time) bool {
	n := o.node()
	n.checkMapDelta(t)
	return len(n.mapAddedKeys) > 0 || len(n.mapRemovedKeys) > 0
}

// AddedKeys returns keys added in the current delta buffer.
func (o Overlay) AddedKeys() []any { return o.node().mapAddedKeys }

// RemovedKeys returns keys removed in the current delta buffer.
func (o Overlay) RemovedKeys() []any { return o.node().mapRemovedKeys }

// RemovedKeyValues returns the buffered removed values, aligned with
// RemovedKeys.
func (o Overlay) RemovedKeyValues() []any { return o.node().mapRemovedVals }

// IsEmptyModifiedAt reports whether the empty<->non-empty transition
// happened exactly at time t (§4.2.3 is_empty feature output).
func (o Overlay) IsEmptyModifiedAt(t engtime.Time) bool {
	return o.node().isEmptyTime == t
}

// IsEmpty reports whether the map currently has zero entries.
func (o Overlay) IsEmpty() bool {
	return len(o.node().mapEntries) == 0
}

// maybeToggleEmpty updates isEmptyTime when size transitions across zero.
// Called after the entries map itself has been mutated by the caller;
// added reports whether that mutation was a key add.
func (o Overlay) maybeToggleEmpty(t engtime.Time, added bool) {
	n := o.node()
	if (added && len(n.mapEntries) == 1) || (!added && len(n.mapEntries) == 0) {
		n.isEmptyTime = t
	}
}

// ClearAll empties the map, recording removals for every current entry at
// time t. Per §8 boundary behavior, an explicit clear() on an
// already-empty map still marks modified.
func (o Overlay) ClearAll(t engtime.Time) {
	n := o.node()
	n.checkMapDelta(t)
	wasEmpty := len(n.mapEntries) == 0
	for k, idx := range n.mapEntries {
		e := Overlay{a: o.a, i: idx}
		n.mapRemovedKeys = append(n.mapRemovedKeys, k)
		n.mapRemovedVals = append(n.mapRemovedVals, e)
	}
	n.mapEntries = make(map[any]Index)
	o.MarkModified(t)
	// Emptiness only transitions when there were entries to clear.
	if !wasEmpty {
		n.isEmptyTime = t
	}
}
