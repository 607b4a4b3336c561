package tsvalue

import (
	"tsengine/internal/engtime"
	"tsengine/internal/overlay"
	"tsengine/internal/schema"
)

// TSOutput is a View owned by a node at a specific OutputID, with a lazily
// materialized cast cache (§4.2.4).
type TSOutput struct {
	View
	Owner NodeRef
	ID    OutputID

	castCache map[*schema.TSSchema]*TSOutput
	// generation increments on every value-level invalidation of this
	// output; cast views compare against the generation they were built
	// at to decide whether they're stale (§13 open question 3: "any cast
	// whose source is invalidated is also invalidated").
	generation  int
	castOf      *TSOutput // non-nil if this output IS a cast view of another
	castOfGenAt int
}

// NewOutput allocates a fresh output of the given schema for owner/id.
func NewOutput(owner NodeRef, id OutputID, s *schema.TSSchema, arena *overlay.Arena) *TSOutput {
	return &TSOutput{View: NewView(s, arena), Owner: owner, ID: id}
}

// MarkModified writes nothing but bumps the overlay's own time (used for
// container-level touches, e.g. explicit Set/Map clear already bumps via
// its own ClearAll — exposed for node code that mutates composite storage
// directly and must then declare the write point).
func (o *TSOutput) MarkModified(t engtime.Time) {
	o.Ovl.MarkModified(t)
}

// Invalidate resets this output to MIN_TIME and bumps its generation so
// any dependent casts know to recompute (§4.2.4, §13 open question 3).
func (o *TSOutput) Invalidate() {
	o.Ovl.MarkInvalid()
	o.generation++
}

// Cast returns the cached cast TS value viewing this output as target,
// materializing it on first request (§4.2.4). target must be Ref[T] (or a
// composite containing Refs) over this output's schema.
func (o *TSOutput) Cast(target *schema.TSSchema) *TSOutput {
	if o.castCache == nil {
		o.castCache = make(map[*schema.TSSchema]*TSOutput)
	}
	if cached, ok := o.castCache[target]; ok {
		if cached.castOfGenAt != o.generation {
			cached.invalidateFromSource(o.generation)
		}
		return cached
	}
	cast := o.materializeCast(target)
	cast.castOf = o
	cast.castOfGenAt = o.generation
	o.castCache[target] = cast
	return cast
}

// materializeCast builds a cast view: for target == Ref[ownSchema], the
// cast's storage is a single Ref scalar whose value points at o.
func (o *TSOutput) materializeCast(target *schema.TSSchema) *TSOutput {
	arena := overlay.NewArena(1)
	cast := &TSOutput{View: NewView(target, arena), Owner: o.Owner, ID: o.ID}
	if target.Kind == schema.KindRef {
		cast.St.SetRef(Bound(o))
		cast.Ovl.MarkModified(o.Ovl.LastModifiedTime())
	}
	return cast
}

func (o *TSOutput) invalidateFromSource(sourceGen int) {
	o.Ovl.MarkInvalid()
	o.castOfGenAt = sourceGen
}
