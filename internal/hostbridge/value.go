package hostbridge

import (
	"fmt"

	"tsengine/internal/engtime"
	"tsengine/internal/schema"
	"tsengine/internal/tsvalue"
)

// ToHost renders a View's current value into plain host-native Go values:
// scalars via their schema's ToHost op, Bundle/List/DynamicList into
// map[string]any/[]any, Set into []any, Map into map[any]any, Window into
// a []any of (time, value) pairs, Ref into its resolved target's value or
// nil. Invalid leaves render as nil (§9, §12).
func ToHost(v tsvalue.View) (any, error) {
	if !v.Valid() && v.Schema.Kind == schema.KindScalar {
		return nil, nil
	}
	switch v.Schema.Kind {
	case schema.KindScalar:
		return schema.OpsFor(v.Schema.ScalarType).ToHost(v.Scalar())
	case schema.KindBundle:
		out := make(map[string]any, len(v.Schema.FieldNames))
		for i, name := range v.Schema.FieldNames {
			h, err := ToHost(v.Field(i))
			if err != nil {
				return nil, fmt.Errorf("hostbridge: field %q: %w", name, err)
			}
			out[name] = h
		}
		return out, nil
	case schema.KindList:
		out := make([]any, v.Schema.N)
		for i := 0; i < v.Schema.N; i++ {
			h, err := ToHost(v.Field(i))
			if err != nil {
				return nil, err
			}
			out[i] = h
		}
		return out, nil
	case schema.KindDynamicList:
		n := v.ListLen()
		out := make([]any, n)
		for i := 0; i < n; i++ {
			h, err := ToHost(v.ListItem(i))
			if err != nil {
				return nil, err
			}
			out[i] = h
		}
		return out, nil
	case schema.KindSet:
		members := v.St.SetMembers()
		out := make([]any, len(members))
		for i, m := range members {
			h, err := schema.OpsFor(v.Schema.Elem.ScalarType).ToHost(m)
			if err != nil {
				return nil, err
			}
			out[i] = h
		}
		return out, nil
	case schema.KindMap:
		out := make(map[any]any, v.St.MapSize())
		for _, k := range v.St.MapKeys() {
			entry, ok := v.MapValue(k)
			if !ok {
				continue
			}
			h, err := ToHost(entry)
			if err != nil {
				return nil, err
			}
			out[k] = h
		}
		return out, nil
	case schema.KindWindow:
		entries := v.St.Window().Values()
		out := make([]any, len(entries))
		for i, e := range entries {
			h, err := schema.OpsFor(v.Schema.Elem.ScalarType).ToHost(e.Value)
			if err != nil {
				return nil, err
			}
			out[i] = []any{int64(e.Time), h}
		}
		return out, nil
	case schema.KindRef:
		ref := v.St.Ref()
		if ref.Kind != tsvalue.RefBound {
			return nil, nil
		}
		return ToHost(ref.Target.View)
	default:
		return nil, fmt.Errorf("hostbridge: unsupported schema kind %v", v.Schema.Kind)
	}
}

// FromHost writes a host-native Go value into dst at time t, following the
// same shape convention as ToHost. Only scalar, Bundle, and DynamicList
// targets are supported — host code never constructs Set/Map/Window/Ref
// values directly (those are produced by the engine itself).
func FromHost(dst tsvalue.View, t engtime.Time, h any) error {
	switch dst.Schema.Kind {
	case schema.KindScalar:
		v, err := schema.OpsFor(dst.Schema.ScalarType).FromHost(h)
		if err != nil {
			return err
		}
		dst.SetScalar(t, v)
		return nil
	case schema.KindBundle:
		m, ok := h.(map[string]any)
		if !ok {
			return fmt.Errorf("hostbridge: expected map[string]any for bundle, got %T", h)
		}
		for i, name := range dst.Schema.FieldNames {
			fv, present := m[name]
			if !present {
				continue
			}
			if err := FromHost(dst.Field(i), t, fv); err != nil {
				return fmt.Errorf("hostbridge: field %q: %w", name, err)
			}
		}
		return nil
	case schema.KindDynamicList:
		items, ok := h.([]any)
		if !ok {
			return fmt.Errorf("hostbridge: expected []any for dynamic list, got %T", h)
		}
		dst.TruncateList(0)
		for _, item := range items {
			if err := FromHost(dst.AppendListItem(), t, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("hostbridge: FromHost unsupported for schema kind %v", dst.Schema.Kind)
	}
}
