package schema

// HostObject is the only scalar variant whose equality/hash/format
// semantics are not owned by the core — they delegate to the host
// language object itself (§9 "Host-object storage"). Reference counting
// for host objects is the host's responsibility; the core only ever
// copies the pointer.
type HostObject interface {
	Equal(other HostObject) bool
	Hash() uint64
	String() string
}

// ScalarOps is the operation table for one ScalarType: construct/copy/
// equal/hash/format/to-host/from-host, resolved once per schema and never
// re-dispatched by runtime type switches on the hot path (§4.2.1, §9
// "Type erasure by operation table").
type ScalarOps struct {
	Zero     func() any
	Copy     func(v any) any
	Equal    func(a, b any) bool
	Hash     func(v any) uint64
	Format   func(v any) string
	ToHost   func(v any) (any, error)
	FromHost func(h any) (any, error)
}

// scalarOpsTable is the built-in operation table, indexed by ScalarType.
var scalarOpsTable = map[ScalarType]ScalarOps{
	Bool:     boolOps,
	Int64:    int64Ops,
	Float64:  float64Ops,
	Date:     dateOps,
	DateTime: dateTimeOps,
	Duration: durationOps,
	String:   stringOps,
	Opaque:   opaqueOps,
}

// OpsFor returns the operation table for a scalar type. Panics on an
// unregistered type — this indicates a schema built outside this package's
// constructors, which is a programmer error, not a runtime condition.
func OpsFor(t ScalarType) ScalarOps {
	ops, ok := scalarOpsTable[t]
	if !ok {
		panic("schema: no operation table registered for scalar type " + t.String())
	}
	return ops
}
