package schema

import (
	"fmt"
	"hash/fnv"
	"time"
)

var boolOps = ScalarOps{
	Zero:     func() any { return false },
	Copy:     func(v any) any { return v },
	Equal:    func(a, b any) bool { return a.(bool) == b.(bool) },
	Hash:     func(v any) uint64 { if v.(bool) { return 1 }; return 0 },
	Format:   func(v any) string { return fmt.Sprintf("%v", v) },
	ToHost:   func(v any) (any, error) { return v, nil },
	FromHost: func(h any) (any, error) { b, ok := h.(bool); if !ok { return nil, fmt.Errorf("expected bool, got %T", h) }; return b, nil },
}

var int64Ops = ScalarOps{
	Zero: func() any { return int64(0) },
	Copy: func(v any) any { return v },
	Equal: func(a, b any) bool { return a.(int64) == b.(int64) },
	Hash: func(v any) uint64 { return uint64(v.(int64)) },
	Format: func(v any) string { return fmt.Sprintf("%d", v.(int64)) },
	ToHost: func(v any) (any, error) { return v, nil },
	FromHost: func(h any) (any, error) {
		switch n := h.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case float64:
			// encoding/json decodes every number as float64.
			if i := int64(n); float64(i) == n {
				return i, nil
			}
			return nil, fmt.Errorf("expected i64-compatible, got non-integral float64 %v", n)
		default:
			return nil, fmt.Errorf("expected i64-compatible, got %T", h)
		}
	},
}

var float64Ops = ScalarOps{
	Zero: func() any { return float64(0) },
	Copy: func(v any) any { return v },
	Equal: func(a, b any) bool { return a.(float64) == b.(float64) },
	Hash: func(v any) uint64 {
		h := fnv.New64a()
		fmt.Fprintf(h, "%g", v.(float64))
		return h.Sum64()
	},
	Format: func(v any) string { return fmt.Sprintf("%g", v.(float64)) },
	ToHost: func(v any) (any, error) { return v, nil },
	FromHost: func(h any) (any, error) {
		switch n := h.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		default:
			return nil, fmt.Errorf("expected f64-compatible, got %T", h)
		}
	},
}

var dateOps = ScalarOps{
	Zero: func() any { return time.Time{} },
	Copy: func(v any) any { return v },
	Equal: func(a, b any) bool { return a.(time.Time).Equal(b.(time.Time)) },
	Hash: func(v any) uint64 { return uint64(v.(time.Time).Unix()) },
	Format: func(v any) string { return v.(time.Time).Format("2006-01-02") },
	ToHost: func(v any) (any, error) { return v, nil },
	FromHost: func(h any) (any, error) {
		t, ok := h.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expected date, got %T", h)
		}
		return t, nil
	},
}

var dateTimeOps = ScalarOps{
	Zero: func() any { return time.Time{} },
	Copy: func(v any) any { return v },
	Equal: func(a, b any) bool { return a.(time.Time).Equal(b.(time.Time)) },
	Hash: func(v any) uint64 { return uint64(v.(time.Time).UnixNano()) },
	Format: func(v any) string { return v.(time.Time).Format(time.RFC3339Nano) },
	ToHost: func(v any) (any, error) { return v, nil },
	FromHost: func(h any) (any, error) {
		t, ok := h.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expected datetime, got %T", h)
		}
		return t, nil
	},
}

var durationOps = ScalarOps{
	Zero: func() any { return time.Duration(0) },
	Copy: func(v any) any { return v },
	Equal: func(a, b any) bool { return a.(time.Duration) == b.(time.Duration) },
	Hash: func(v any) uint64 { return uint64(v.(time.Duration)) },
	Format: func(v any) string { return v.(time.Duration).String() },
	ToHost: func(v any) (any, error) { return v, nil },
	FromHost: func(h any) (any, error) {
		d, ok := h.(time.Duration)
		if !ok {
			return nil, fmt.Errorf("expected duration, got %T", h)
		}
		return d, nil
	},
}

var stringOps = ScalarOps{
	Zero: func() any { return "" },
	Copy: func(v any) any { return v },
	Equal: func(a, b any) bool { return a.(string) == b.(string) },
	Hash: func(v any) uint64 {
		h := fnv.New64a()
		h.Write([]byte(v.(string)))
		return h.Sum64()
	},
	Format: func(v any) string { return v.(string) },
	ToHost: func(v any) (any, error) { return v, nil },
	FromHost: func(h any) (any, error) {
		s, ok := h.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", h)
		}
		return s, nil
	},
}

// opaqueOps is the single place host semantics leak into the core (§9):
// equality, hash and formatting are delegated entirely to the HostObject.
var opaqueOps = ScalarOps{
	Zero: func() any { return nil },
	Copy: func(v any) any { return v }, // host objects are refcounted by the host, copy is a pointer copy
	Equal: func(a, b any) bool {
		ha, aok := a.(HostObject)
		hb, bok := b.(HostObject)
		if !aok || !bok {
			return a == b
		}
		return ha.Equal(hb)
	},
	Hash: func(v any) uint64 {
		if h, ok := v.(HostObject); ok {
			return h.Hash()
		}
		return 0
	},
	Format: func(v any) string {
		if h, ok := v.(HostObject); ok {
			return h.String()
		}
		return fmt.Sprintf("%v", v)
	},
	ToHost:   func(v any) (any, error) { return v, nil },
	FromHost: func(h any) (any, error) { return h, nil },
}
