package tsvalue

import (
	"tsengine/internal/engtime"
	"tsengine/internal/overlay"
	"tsengine/internal/schema"
)

// OutputID identifies an output position on a node.
type OutputID int

const (
	MainOutput  OutputID = 0
	ErrorOutput OutputID = -1
	StateOutput OutputID = -2
)

// NodeRef is the minimal identity a TSOutput needs of its owning node:
// enough to render an error path (§6.3) without tsvalue importing the
// node package (which itself imports tsvalue).
type NodeRef interface {
	Path() string
}

// View wraps one schema position's storage and overlay together and
// provides the read/write surface shared by outputs, plain (unbound)
// inputs, and nested composite children. It is the unit the binding
// package swaps in place of an input's local storage/overlay when a peer
// link is established (§4.3.2).
type View struct {
	Schema *schema.TSSchema
	St     *Storage
	Ovl    overlay.Overlay
}

// NewView allocates a fresh, unmodified View shaped like s within arena a.
func NewView(s *schema.TSSchema, arena *overlay.Arena) View {
	return View{
		Schema: s,
		St:     NewStorage(s),
		Ovl:    buildOverlayTree(s, arena),
	}
}

// buildOverlayTree allocates an overlay node mirroring s's shape. Bundle
// and fixed List schemas get their full child overlay tree up front (their
// arity is static); DynamicList/Set/Map/Window/Ref overlays start with no
// children and grow as values are pushed/added (§3 invariant 1).
func buildOverlayTree(s *schema.TSSchema, arena *overlay.Arena) overlay.Overlay {
	switch s.Kind {
	case schema.KindBundle:
		o := overlay.New(arena, s.Kind)
		for _, fs := range s.Fields {
			o.AddChild(buildOverlayTree(fs, arena))
		}
		return o
	case schema.KindList:
		o := overlay.New(arena, s.Kind)
		for i := 0; i < s.N; i++ {
			o.AddChild(buildOverlayTree(s.Elem, arena))
		}
		return o
	default:
		return overlay.New(arena, s.Kind)
	}
}

// Valid/Modified/AllValid/LastModifiedTime proxy the overlay (§3
// invariants 5, 7, 8).
func (v View) Valid() bool                          { return v.Ovl.Valid() }
func (v View) AllValid() bool                       { return v.Ovl.AllValid() }
func (v View) Modified(now engtime.Time) bool       { return v.Ovl.ModifiedAt(now) }
func (v View) LastModifiedTime() engtime.Time       { return v.Ovl.LastModifiedTime() }

// SetScalar writes a scalar value and marks the overlay modified at t.
func (v View) SetScalar(t engtime.Time, val any) {
	v.St.SetScalar(val)
	v.Ovl.MarkModified(t)
}

// Scalar reads the current scalar value.
func (v View) Scalar() any { return v.St.Scalar() }

// Field returns the View over the i-th bundle/fixed-list child.
func (v View) Field(i int) View {
	return View{Schema: v.St.fieldSchema(i), St: v.St.Field(i), Ovl: v.Ovl.Child(i)}
}

// FieldByName returns the View over a named bundle field.
func (v View) FieldByName(name string) View {
	idx := v.Schema.FieldIndex(name)
	if idx < 0 {
		return View{}
	}
	return v.Field(idx)
}

// AppendListItem grows a DynamicList by one element, keeping storage and
// overlay shape in lock-step, and returns the new element's View.
func (v View) AppendListItem() View {
	child := v.St.AppendList()
	childOvl := v.Ovl.AppendChild(v.Schema.Elem.Kind)
	return View{Schema: v.Schema.Elem, St: child, Ovl: childOvl}
}

// ListLen returns the current DynamicList length.
func (v View) ListLen() int { return len(v.St.List()) }

// ListItem returns the View over the i-th DynamicList element.
func (v View) ListItem(i int) View {
	return View{Schema: v.Schema.Elem, St: v.St.List()[i], Ovl: v.Ovl.Child(i)}
}

// TruncateList shrinks a DynamicList to n elements in both storage and overlay.
func (v View) TruncateList(n int) {
	v.St.TruncateList(n)
	v.Ovl.TruncateChildren(n)
}

// MapValueView returns the View over a map entry's value, creating it if
// absent.
func (v View) MapValueView(key any) (view View, created bool) {
	st, stCreated := v.St.MapEnsure(key)
	ovl, ovlCreated := v.Ovl.EnsureEntry(key, v.Schema.ValueSchema.Kind)
	return View{Schema: v.Schema.ValueSchema, St: st, Ovl: ovl}, stCreated || ovlCreated
}

// MapValue returns the View over an existing map entry.
func (v View) MapValue(key any) (View, bool) {
	st, ok := v.St.MapGet(key)
	if !ok {
		return View{}, false
	}
	ovl, _ := v.Ovl.Entry(key)
	return View{Schema: v.Schema.ValueSchema, St: st, Ovl: ovl}, true
}

// MapDelete removes key from both storage and overlay.
func (v View) MapDelete(key any) {
	v.St.MapDelete(key)
	v.Ovl.RemoveEntry(key)
}

func (s *Storage) fieldSchema(i int) *schema.TSSchema {
	switch s.schema.Kind {
	case schema.KindBundle:
		return s.schema.Fields[i]
	case schema.KindList:
		return s.schema.Elem
	default:
		return nil
	}
}
