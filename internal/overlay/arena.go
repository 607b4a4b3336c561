// Package overlay implements the parallel modification-tracking tree that
// mirrors a time-series value's composite structure (C2 in SPEC_FULL.md).
//
// Overlay nodes carry raw parent/observer pointers in the source this
// engine is modeled on; per §9 "Cyclic back-references", this
// implementation instead arena-allocates nodes and addresses them by
// index, inspired by the region/offset layout in sbl8-sublation's
// runtime.Arena — simplified here to a plain growable slice of typed
// nodes rather than an unsafe byte buffer, since the overlay tree has no
// need for sublate's raw memory-layout concerns.
package overlay

import "tsengine/internal/engtime"

// Index addresses one Node within an Arena. The zero value Index(0) is a
// valid root index; use NoIndex for "no parent"/"absent".
type Index int32

// NoIndex marks the absence of a node reference (e.g. a root's parent).
const NoIndex Index = -1

// Arena owns every overlay Node for one graph. Nodes are never freed
// individually — the whole arena is dropped with the graph.
type Arena struct {
	nodes []Node
}

// NewArena creates an empty overlay arena with room for n nodes.
func NewArena(capacityHint int) *Arena {
	return &Arena{nodes: make([]Node, 0, capacityHint)}
}

// alloc appends a zero-value node of the given kind and returns its index.
func (a *Arena) alloc(k Kind) Index {
	a.nodes = append(a.nodes, Node{
		kind:    k,
		ownTime: engtime.MinTime,
		parent:  NoIndex,
	})
	return Index(len(a.nodes) - 1)
}

func (a *Arena) at(i Index) *Node {
	return &a.nodes[i]
}

// Len returns the number of nodes allocated in this arena.
func (a *Arena) Len() int { return len(a.nodes) }
