package schema

import (
	"strings"
	"time"
)

// TSSchema is a tree of Kind-tagged nodes describing one time-series value.
// Instances are only ever produced through the New* constructors below,
// which intern the result — two schemas built from the same structure
// return the identical *TSSchema pointer (§3 "Schema").
type TSSchema struct {
	Kind Kind

	// Scalar
	ScalarType ScalarType

	// Bundle: fixed-key record, field order is part of identity.
	FieldNames []string
	Fields     []*TSSchema

	// List / DynamicList
	Elem *TSSchema
	N    int // static size for List, 0/unused for DynamicList

	// Set: Elem above holds the (hashable scalar) element schema.

	// Map
	KeySchema   *TSSchema
	ValueSchema *TSSchema

	// Window
	WindowCapacity  int           // count-bounded if > 0
	WindowDuration  time.Duration // time-bounded if > 0
	WindowIsCounted bool

	// Ref
	Inner *TSSchema

	key string // canonical structural key used for interning
}

// IsLeaf reports whether this schema node is a scalar leaf.
func (s *TSSchema) IsLeaf() bool { return s.Kind == KindScalar }

// ChildCount returns the number of addressable children for composite kinds
// with statically known arity (Bundle, List). Returns 0 for dynamic/keyed
// composites (DynamicList, Set, Map) whose arity is only known at runtime.
func (s *TSSchema) ChildCount() int {
	switch s.Kind {
	case KindBundle:
		return len(s.Fields)
	case KindList:
		return s.N
	default:
		return 0
	}
}

// FieldIndex returns the index of a bundle field by name, or -1.
func (s *TSSchema) FieldIndex(name string) int {
	for i, n := range s.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

// registry interns schemas by their canonical structural key.
type registry struct {
	byKey map[string]*TSSchema
}

var defaultRegistry = &registry{byKey: make(map[string]*TSSchema)}

func (r *registry) intern(s *TSSchema) *TSSchema {
	k := s.key
	if existing, ok := r.byKey[k]; ok {
		return existing
	}
	r.byKey[k] = s
	return s
}

// NewScalar returns (an interned) scalar schema of type t.
func NewScalar(t ScalarType) *TSSchema {
	s := &TSSchema{Kind: KindScalar, ScalarType: t, key: "S:" + t.String()}
	return defaultRegistry.intern(s)
}

// NewBundle returns an interned bundle schema. Field order matters for
// identity: Bundle{a,b} and Bundle{b,a} intern to distinct schemas.
func NewBundle(fieldNames []string, fields []*TSSchema) *TSSchema {
	if len(fieldNames) != len(fields) {
		panic("schema: NewBundle field name/schema length mismatch")
	}
	var b strings.Builder
	b.WriteString("B:")
	for i, n := range fieldNames {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(fields[i].key)
	}
	s := &TSSchema{Kind: KindBundle, FieldNames: append([]string(nil), fieldNames...), Fields: append([]*TSSchema(nil), fields...), key: b.String()}
	return defaultRegistry.intern(s)
}

// NewList returns an interned fixed-size list schema. N must be > 0.
func NewList(elem *TSSchema, n int) *TSSchema {
	if n <= 0 {
		panic("schema: NewList requires N > 0; use NewDynamicList for variable length")
	}
	s := &TSSchema{Kind: KindList, Elem: elem, N: n, key: "L:" + itoa(n) + ":" + elem.key}
	return defaultRegistry.intern(s)
}

// NewDynamicList returns an interned variable-length list schema.
func NewDynamicList(elem *TSSchema) *TSSchema {
	s := &TSSchema{Kind: KindDynamicList, Elem: elem, key: "DL:" + elem.key}
	return defaultRegistry.intern(s)
}

// NewSet returns an interned unordered-set schema over a hashable scalar.
func NewSet(elem *TSSchema) *TSSchema {
	if elem.Kind != KindScalar {
		panic("schema: Set elements must be hashable scalars")
	}
	s := &TSSchema{Kind: KindSet, Elem: elem, key: "Se:" + elem.key}
	return defaultRegistry.intern(s)
}

// NewMap returns an interned map schema; key must be a hashable scalar.
func NewMap(key *TSSchema, value *TSSchema) *TSSchema {
	if key.Kind != KindScalar {
		panic("schema: Map key must be a hashable scalar")
	}
	s := &TSSchema{Kind: KindMap, KeySchema: key, ValueSchema: value, key: "M:" + key.key + "->" + value.key}
	return defaultRegistry.intern(s)
}

// NewWindowByCapacity returns an interned count-bounded (cyclic) window schema.
func NewWindowByCapacity(elem *TSSchema, capacity int) *TSSchema {
	if capacity <= 0 {
		panic("schema: window capacity must be > 0")
	}
	s := &TSSchema{Kind: KindWindow, Elem: elem, WindowCapacity: capacity, WindowIsCounted: true, key: "W:" + itoa(capacity) + ":" + elem.key}
	return defaultRegistry.intern(s)
}

// NewWindowByDuration returns an interned time-bounded (eviction queue) window schema.
func NewWindowByDuration(elem *TSSchema, d time.Duration) *TSSchema {
	if d <= 0 {
		panic("schema: window duration must be > 0")
	}
	s := &TSSchema{Kind: KindWindow, Elem: elem, WindowDuration: d, key: "Wd:" + d.String() + ":" + elem.key}
	return defaultRegistry.intern(s)
}

// NewRef returns an interned reference schema wrapping inner.
func NewRef(inner *TSSchema) *TSSchema {
	s := &TSSchema{Kind: KindRef, Inner: inner, key: "R:" + inner.key}
	return defaultRegistry.intern(s)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	buf := [20]byte{}
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
