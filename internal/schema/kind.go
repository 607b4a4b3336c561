// Package schema implements type-erased, schema-driven storage for scalars
// and composite time-series types (C1 in SPEC_FULL.md). Schemas are interned:
// two schemas are identical iff they have the same tree structure and leaf
// types, so pointer equality suffices once interned (§3 "Schema").
package schema

// Kind tags a node in a TSSchema tree.
type Kind int

const (
	KindScalar Kind = iota
	KindBundle
	KindList        // fixed-size list, N > 0 static
	KindDynamicList // variable length
	KindSet
	KindMap
	KindWindow
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "Scalar"
	case KindBundle:
		return "Bundle"
	case KindList:
		return "List"
	case KindDynamicList:
		return "DynamicList"
	case KindSet:
		return "Set"
	case KindMap:
		return "Map"
	case KindWindow:
		return "Window"
	case KindRef:
		return "Ref"
	default:
		return "Unknown"
	}
}

// ScalarType enumerates the primitive leaf types.
type ScalarType int

const (
	Bool ScalarType = iota
	Int64
	Float64
	Date
	DateTime
	Duration
	String
	Opaque // host object, see ops.go HostObject
)

func (s ScalarType) String() string {
	switch s {
	case Bool:
		return "bool"
	case Int64:
		return "i64"
	case Float64:
		return "f64"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	case Duration:
		return "duration"
	case String:
		return "string"
	case Opaque:
		return "opaque"
	default:
		return "unknown"
	}
}
