// Package tsvalue binds a schema, a storage buffer, an overlay and
// ownership metadata into a single addressable input or output (C3 in
// SPEC_FULL.md).
package tsvalue

import "tsengine/internal/schema"

// Storage is the type-erased value buffer for one schema position.
// Construction, copy, equality, hashing and formatting are dispatched
// through the schema's per-kind/per-scalar-type operation table — no
// runtime type-id checks happen at call sites (§4.2.1).
type Storage struct {
	schema *schema.TSSchema

	scalar any // Scalar

	fields []*Storage // Bundle / fixed List children, in schema order

	list []*Storage // DynamicList children

	setVals []any        // Set: index -> value (tombstoned slots kept for stable indices)
	setLive []bool       // Set: index -> still present
	setIdx  map[any]int  // Set: value -> index, for O(1) membership/removal

	mapVals map[any]*Storage // Map: key -> value storage
	mapKeys []any            // Map: insertion-ordered keys, for deterministic iteration

	window *Window // Window

	ref RefValue // Ref
}

// NewStorage allocates a zero-value storage buffer shaped like s.
func NewStorage(s *schema.TSSchema) *Storage {
	st := &Storage{schema: s}
	switch s.Kind {
	case schema.KindScalar:
		st.scalar = schema.OpsFor(s.ScalarType).Zero()
	case schema.KindBundle:
		st.fields = make([]*Storage, len(s.Fields))
		for i, fs := range s.Fields {
			st.fields[i] = NewStorage(fs)
		}
	case schema.KindList:
		st.fields = make([]*Storage, s.N)
		for i := 0; i < s.N; i++ {
			st.fields[i] = NewStorage(s.Elem)
		}
	case schema.KindDynamicList:
		st.list = nil
	case schema.KindSet:
		st.setIdx = make(map[any]int)
	case schema.KindMap:
		st.mapVals = make(map[any]*Storage)
	case schema.KindWindow:
		st.window = newWindow(s)
	case schema.KindRef:
		st.ref = RefValue{Kind: RefEmpty}
	}
	return st
}

// Schema returns the schema this storage is shaped for.
func (s *Storage) Schema() *schema.TSSchema { return s.schema }

// Scalar returns the boxed scalar value. Panics if not a scalar storage.
func (s *Storage) Scalar() any {
	if s.schema.Kind != schema.KindScalar {
		panic("tsvalue: Scalar() called on non-scalar storage")
	}
	return s.scalar
}

// SetScalar copies v into this scalar storage via the schema's Copy op.
func (s *Storage) SetScalar(v any) {
	if s.schema.Kind != schema.KindScalar {
		panic("tsvalue: SetScalar() called on non-scalar storage")
	}
	s.scalar = schema.OpsFor(s.schema.ScalarType).Copy(v)
}

// Field returns the i-th bundle/fixed-list child storage.
func (s *Storage) Field(i int) *Storage {
	return s.fields[i]
}

// FieldByName returns a bundle child storage by field name.
func (s *Storage) FieldByName(name string) *Storage {
	idx := s.schema.FieldIndex(name)
	if idx < 0 {
		return nil
	}
	return s.fields[idx]
}

// List returns the current DynamicList children, in order.
func (s *Storage) List() []*Storage { return s.list }

// AppendList appends a new zero-valued element and returns it.
func (s *Storage) AppendList() *Storage {
	child := NewStorage(s.schema.Elem)
	s.list = append(s.list, child)
	return child
}

// TruncateList shrinks the DynamicList to n elements.
func (s *Storage) TruncateList(n int) {
	if n < len(s.list) {
		s.list = s.list[:n]
	}
}

// Window returns the window ring/queue for a Window storage.
func (s *Storage) Window() *Window { return s.window }

// Ref returns the current RefValue for a Ref storage.
func (s *Storage) Ref() RefValue { return s.ref }

// SetRef replaces the RefValue for a Ref storage.
func (s *Storage) SetRef(v RefValue) { s.ref = v }
