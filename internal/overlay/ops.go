package overlay

import (
	"tsengine/internal/engtime"
	"tsengine/internal/schema"
)

// LastModifiedTime returns this overlay's own modification time, O(1).
func (o Overlay) LastModifiedTime() engtime.Time {
	return o.node().ownTime
}

// ModifiedAt reports whether this overlay was last modified exactly at t.
func (o Overlay) ModifiedAt(t engtime.Time) bool {
	return o.node().ownTime == t
}

// Valid reports last_modified_time > MIN_TIME (§3 invariant 5).
func (o Overlay) Valid() bool {
	return o.node().ownTime.Valid()
}

// AllValid reports whether every leaf in this subtree is valid (§3
// invariant 8). Leaves (Scalar/Set/Map/Window/Ref) are valid iff Valid();
// composites recurse into children.
func (o Overlay) AllValid() bool {
	n := o.node()
	switch n.kind {
	case schema.KindBundle, schema.KindList, schema.KindDynamicList:
		if len(n.children) == 0 {
			return o.Valid()
		}
		for _, ci := range n.children {
			c := Overlay{a: o.a, i: ci}
			if !c.AllValid() {
				return false
			}
		}
		return true
	default:
		return o.Valid()
	}
}

// MarkModified updates this overlay's own time, notifies this level's own
// subscribers, and propagates to the parent overlay iff parent_time < time
// (§4.2.2 mark_modified, §4.4.4: "updates its overlay timestamp, propagates
// to parent overlay, and invokes every subscriber's notify(time)"). The
// propagation recurses, so every ancestor whose own time actually advances
// also fires its own subscribers — this is what lets a peered input bound
// directly to a container position (rather than one of its leaves) observe
// a nested field write.
func (o Overlay) MarkModified(t engtime.Time) {
	n := o.node()
	if t <= n.ownTime {
		// Round-trip law (§8): mark_modified(t); mark_modified(t') with
		// t' <= t leaves the overlay at t — modification times only move
		// forward.
		return
	}
	n.ownTime = t
	o.Notify(t)
	if n.parent != NoIndex {
		p := Overlay{a: o.a, i: n.parent}
		if p.LastModifiedTime() < t {
			p.MarkModified(t)
		}
	}
}

// MarkInvalid resets this overlay's own time to MIN_TIME. Invalidation is
// local and does not propagate to the parent (§4.2.2 mark_invalid, §8
// testable property 7).
func (o Overlay) MarkInvalid() {
	o.node().ownTime = engtime.MinTime
}

// Subscribe registers an observer, allocating the observer slice lazily on
// first use (§9 "Lazy overlay allocation").
func (o Overlay) Subscribe(obs Observer) {
	n := o.node()
	n.observers = append(n.observers, obs)
}

// Unsubscribe removes the given observer if present. De-registration is the
// subscriber's contract (§9).
func (o Overlay) Unsubscribe(obs Observer) {
	n := o.node()
	for i, existing := range n.observers {
		if existing == obs {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

// Notify invokes every subscriber's Notify(t).
func (o Overlay) Notify(t engtime.Time) {
	n := o.node()
	for _, obs := range n.observers {
		obs.Notify(t)
	}
}

// ModifiedIndices iterates children and returns indices of those whose
// last_modified_time equals t (§4.2.2).
func (o Overlay) ModifiedIndices(t engtime.Time) []int {
	n := o.node()
	var out []int
	for i, ci := range n.children {
		c := Overlay{a: o.a, i: ci}
		if c.LastModifiedTime() == t {
			out = append(out, i)
		}
	}
	return out
}
