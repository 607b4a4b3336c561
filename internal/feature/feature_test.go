package feature

import (
	"testing"

	"tsengine/internal/engtime"
	"tsengine/internal/overlay"
	"tsengine/internal/schema"
	"tsengine/internal/tsvalue"
)

type fakeNode struct{ path string }

func (f *fakeNode) Path() string { return f.path }

func newMapOutput() *tsvalue.TSOutput {
	s := schema.NewMap(schema.NewScalar(schema.Int64), schema.NewScalar(schema.Float64))
	return tsvalue.NewOutput(&fakeNode{"m"}, tsvalue.MainOutput, s, overlay.NewArena(8))
}

func TestGetRefRefcounting(t *testing.T) {
	mapOut := newMapOutput()
	mgr := NewManager(mapOut, overlay.NewArena(8))

	r1 := mgr.GetRef(int64(1), "req-a")
	r2 := mgr.GetRef(int64(1), "req-a")
	if r1 != r2 {
		t.Fatal("same (key, requester) must return the same output instance")
	}
	rOther := mgr.GetRef(int64(1), "req-b")
	if rOther == r1 {
		t.Fatal("different requesters must get distinct feature outputs")
	}

	if r1.St.Ref().Kind != tsvalue.RefEmpty {
		t.Fatal("expected Empty ref before key is present")
	}

	st, _ := mapOut.St.MapEnsure(int64(1))
	mapOut.Ovl.EnsureEntry(int64(1), schema.KindScalar)
	st.SetScalar(3.5)
	mgr.Update(engtime.Time(10))

	if r1.St.Ref().Kind != tsvalue.RefBound {
		t.Fatal("expected ref bound once key is present")
	}
	if r1.LastModifiedTime() != 10 {
		t.Fatalf("expected ref output modified at t=10, got %v", r1.LastModifiedTime())
	}

	mgr.ReleaseRef(int64(1), "req-a")
	mgr.ReleaseRef(int64(1), "req-a")
	if _, ok := mgr.refs[reqKey{int64(1), "req-a"}]; ok {
		t.Fatal("expected feature freed once refcount hits zero")
	}
}

func TestContainsTracksMembership(t *testing.T) {
	mapOut := newMapOutput()
	mgr := NewManager(mapOut, overlay.NewArena(8))

	c := mgr.Contains(int64(7), "req")
	if c.Scalar().(bool) {
		t.Fatal("expected contains=false before key exists")
	}

	mapOut.St.MapEnsure(int64(7))
	mapOut.Ovl.EnsureEntry(int64(7), schema.KindScalar)
	mgr.Update(engtime.Time(5))
	if !c.Scalar().(bool) {
		t.Fatal("expected contains=true after key is added")
	}
	if c.LastModifiedTime() != 5 {
		t.Fatalf("expected modified at t=5, got %v", c.LastModifiedTime())
	}

	// A tick with no membership change must not re-notify.
	mgr.Update(engtime.Time(6))
	if c.LastModifiedTime() != 5 {
		t.Fatal("contains output must not update when membership is unchanged")
	}
}

func TestIsEmptyOnlyChangesOnTransition(t *testing.T) {
	mapOut := newMapOutput()
	mgr := NewManager(mapOut, overlay.NewArena(8))

	e := mgr.IsEmpty()
	if !e.Scalar().(bool) {
		t.Fatal("expected is_empty=true initially")
	}

	mapOut.St.MapEnsure(int64(1))
	mapOut.Ovl.EnsureEntry(int64(1), schema.KindScalar)
	mgr.Update(engtime.Time(1))
	if e.Scalar().(bool) {
		t.Fatal("expected is_empty=false after first entry added")
	}
	firstChange := e.LastModifiedTime()

	mapOut.St.MapEnsure(int64(2))
	mapOut.Ovl.EnsureEntry(int64(2), schema.KindScalar)
	mgr.Update(engtime.Time(2))
	if e.LastModifiedTime() != firstChange {
		t.Fatal("is_empty must not change again while staying non-empty")
	}
}
