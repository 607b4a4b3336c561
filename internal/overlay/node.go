package overlay

import (
	"tsengine/internal/engtime"
	"tsengine/internal/schema"
)

// Kind mirrors schema.Kind; overlays are shaped by the schema tree (§3
// invariant 1: "overlay structure shape matches the value structure
// shape").
type Kind = schema.Kind

// Observer is notified when an overlay is marked modified. Concrete
// observers are nodes (via the scheduler) or feature outputs.
type Observer interface {
	Notify(t engtime.Time)
}

// RefObserver is a rebind hook registered on a Ref overlay: Rebind
// re-resolves the observing input when the Ref is retargeted (§4.3.3).
// The binding package supplies Rebind as a closure to avoid an import cycle.
type RefObserver struct {
	Rebind func(t engtime.Time)
}

// Node is the arena-resident representation of one overlay position. Which
// fields are meaningful depends on kind; dispatch is a closed match over
// Kind rather than an open class hierarchy (§9 "Visitor macros and virtual
// inheritance").
type Node struct {
	kind    Kind
	ownTime engtime.Time
	parent  Index
	arena   *Arena

	observers []Observer // lazily allocated (§9 "Lazy overlay allocation")

	// Bundle / List / DynamicList: child overlay indices.
	children []Index

	// Set: added/removed index buffers, O(1) lookup sets, buffered removed
	// values (§4.2.2, §3 overlay table).
	addedIdx   []int
	removedIdx []int
	removedVal []any
	addedSet   map[int]struct{}
	removedSet map[int]struct{}
	deltaTime  engtime.Time // time the current added/removed buffers were recorded at

	// Map: separate delta time, added/removed key buffers, buffered
	// removed keys, per-entry value overlays, is_empty tracking.
	mapAddedKeys   []any
	mapRemovedKeys []any
	mapRemovedVals []any
	mapEntries     map[any]Index // key -> value overlay index
	mapDeltaTime   engtime.Time
	isEmptyTime    engtime.Time // last time empty<->non-empty transitioned

	// Ref: observers to rebind when the Ref's target changes.
	refObservers []*RefObserver
	boundOutput  any // opaque handle set by the binding package (map Ref elements, §3 overlay table)
}

// Overlay is a lightweight handle into an Arena: (arena, index). It is
// cheap to copy and pass by value.
type Overlay struct {
	a *Arena
	i Index
}

// Zero is the invalid/absent overlay handle.
var Zero = Overlay{}

// Index returns the underlying arena index, for building parent/child maps.
func (o Overlay) Index() Index { return o.i }

func (o Overlay) node() *Node { return o.a.at(o.i) }

// New allocates a fresh overlay node of the given kind in arena a, with no
// parent. Use SetParent to attach it once the tree shape is known.
func New(a *Arena, k Kind) Overlay {
	idx := a.alloc(k)
	n := a.at(idx)
	n.arena = a
	n.deltaTime = engtime.MinTime
	n.mapDeltaTime = engtime.MinTime
	n.isEmptyTime = engtime.MinTime
	return Overlay{a: a, i: idx}
}

// Kind returns the schema kind this overlay mirrors.
func (o Overlay) Kind() Kind { return o.node().kind }

// SetParent wires o as a child of parent; used while building composite
// overlay trees bottom-up.
func (o Overlay) SetParent(parent Overlay) {
	o.node().parent = parent.i
	if o.a != parent.a {
		panic("overlay: cannot mix arenas")
	}
}

// AddChild appends a child overlay and parents it to o. Used for Bundle and
// List (fixed arity) overlays.
func (o Overlay) AddChild(child Overlay) {
	child.SetParent(o)
	n := o.node()
	n.children = append(n.children, child.i)
}

// Child returns the i-th child overlay of a Bundle/List/DynamicList overlay.
func (o Overlay) Child(i int) Overlay {
	n := o.node()
	if i < 0 || i >= len(n.children) {
		return Zero
	}
	return Overlay{a: o.a, i: n.children[i]}
}

// ChildCount returns the number of children currently tracked.
func (o Overlay) ChildCount() int {
	return len(o.node().children)
}

// Parent returns the parent overlay, or the Zero overlay if this is a root.
func (o Overlay) Parent() Overlay {
	n := o.node()
	if n.parent == NoIndex {
		return Zero
	}
	return Overlay{a: o.a, i: n.parent}
}
