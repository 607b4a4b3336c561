package binding

import (
	"testing"

	"tsengine/internal/engineerr"
	"tsengine/internal/engtime"
	"tsengine/internal/overlay"
	"tsengine/internal/schema"
	"tsengine/internal/tsvalue"
)

type fakeNode struct{ path string }

func (f *fakeNode) Path() string { return f.path }

type countObserver struct{ n int }

func (c *countObserver) Notify(t engtime.Time) { c.n++ }

func TestBindPeerSharesStorage(t *testing.T) {
	s := schema.NewScalar(schema.Int64)
	out := tsvalue.NewOutput(&fakeNode{"src"}, tsvalue.MainOutput, s, overlay.NewArena(4))
	in := tsvalue.NewInput(&fakeNode{"dst"}, "x", s, overlay.NewArena(4))
	obs := &countObserver{}

	if err := Bind(in, out, obs); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if in.Kind != tsvalue.LinkPeer {
		t.Fatalf("expected LinkPeer, got %v", in.Kind)
	}

	out.SetScalar(engtime.Time(10), int64(42))
	if in.Scalar().(int64) != 42 {
		t.Fatal("peer input should observe the output's storage directly")
	}
	if obs.n != 1 {
		t.Fatalf("expected observer notified once, got %d", obs.n)
	}

	Unbind(in)
	if in.Kind != tsvalue.LinkUnbound {
		t.Fatal("expected LinkUnbound after Unbind")
	}
	out.SetScalar(engtime.Time(20), int64(99))
	if obs.n != 1 {
		t.Fatal("unbound input's observer must not see further writes")
	}
}

func TestBindMismatch(t *testing.T) {
	a := schema.NewScalar(schema.Int64)
	b := schema.NewScalar(schema.Float64)
	out := tsvalue.NewOutput(&fakeNode{"src"}, tsvalue.MainOutput, a, overlay.NewArena(4))
	in := tsvalue.NewInput(&fakeNode{"dst"}, "x", b, overlay.NewArena(4))

	err := Bind(in, out, nil)
	if err == nil {
		t.Fatal("expected BindingError for mismatched scalar types")
	}
	if _, ok := err.(*engineerr.BindingError); !ok {
		t.Fatalf("expected *engineerr.BindingError, got %T", err)
	}
}

func TestBindDerefFollowsRefAndRebindsSynchronously(t *testing.T) {
	inner := schema.NewScalar(schema.Int64)
	refSchema := schema.NewRef(inner)

	refOut := tsvalue.NewOutput(&fakeNode{"ref"}, tsvalue.MainOutput, refSchema, overlay.NewArena(4))
	targetA := tsvalue.NewOutput(&fakeNode{"a"}, tsvalue.MainOutput, inner, overlay.NewArena(4))
	targetB := tsvalue.NewOutput(&fakeNode{"b"}, tsvalue.MainOutput, inner, overlay.NewArena(4))

	in := tsvalue.NewInput(&fakeNode{"dst"}, "x", inner, overlay.NewArena(4))
	obs := &countObserver{}

	targetA.SetScalar(engtime.Time(1), int64(1))
	refOut.St.SetRef(tsvalue.Bound(targetA))
	refOut.Ovl.MarkModified(engtime.Time(1))

	if err := Bind(in, refOut, obs); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if in.Kind != tsvalue.LinkDeref {
		t.Fatalf("expected LinkDeref, got %v", in.Kind)
	}
	if in.Scalar().(int64) != 1 {
		t.Fatal("deref input should read through to the bound target's value")
	}

	// Retarget the Ref to targetB and fire its rebind observers, as the
	// writer owning refOut would when it writes a new RefValue (§4.3.3).
	targetB.SetScalar(engtime.Time(2), int64(7))
	refOut.St.SetRef(tsvalue.Bound(targetB))
	refOut.Ovl.MarkModified(engtime.Time(3))
	refOut.Ovl.NotifyRebind(engtime.Time(3))

	if in.Scalar().(int64) != 7 {
		t.Fatal("deref input should follow the retarget to targetB")
	}
	if obs.n != 1 {
		t.Fatalf("expected exactly one synchronous rebind notification, got %d", obs.n)
	}

	// Further writes to the old target must no longer reach the input.
	targetA.SetScalar(engtime.Time(4), int64(999))
	if in.Scalar().(int64) != 7 {
		t.Fatal("input must have been unsubscribed from the old target")
	}
}

func TestBindCompositeBundleMixedLinks(t *testing.T) {
	leaf := schema.NewScalar(schema.Int64)
	refOfLeaf := schema.NewRef(leaf)
	inputBundle := schema.NewBundle([]string{"peer", "ref"}, []*schema.TSSchema{leaf, leaf})
	outputBundle := schema.NewBundle([]string{"peer", "ref"}, []*schema.TSSchema{leaf, refOfLeaf})

	out := tsvalue.NewOutput(&fakeNode{"src"}, tsvalue.MainOutput, outputBundle, overlay.NewArena(8))
	in := tsvalue.NewInput(&fakeNode{"dst"}, "x", inputBundle, overlay.NewArena(8))

	target := tsvalue.NewOutput(&fakeNode{"t"}, tsvalue.MainOutput, leaf, overlay.NewArena(4))
	target.SetScalar(engtime.Time(1), int64(5))
	out.Field(1).St.SetRef(tsvalue.Bound(target))
	out.Field(1).Ovl.MarkModified(engtime.Time(1))

	if err := Bind(in, out, nil); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if in.Kind != tsvalue.LinkComposite {
		t.Fatalf("expected LinkComposite, got %v", in.Kind)
	}
	if len(in.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(in.Children))
	}
	if in.Children[0].Kind != tsvalue.LinkPeer {
		t.Fatalf("expected field 0 to peer, got %v", in.Children[0].Kind)
	}
	if in.Children[1].Kind != tsvalue.LinkDeref {
		t.Fatalf("expected field 1 to deref, got %v", in.Children[1].Kind)
	}
	if in.Children[1].Scalar().(int64) != 5 {
		t.Fatal("deref'd field should read through to target's value")
	}
}
