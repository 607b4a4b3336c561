package overlay

import (
	"testing"

	"tsengine/internal/engtime"
	"tsengine/internal/schema"
)

func TestMarkModifiedPropagatesUpward(t *testing.T) {
	a := NewArena(8)
	parent := New(a, schema.KindBundle)
	childA := New(a, schema.KindScalar)
	childB := New(a, schema.KindScalar)
	parent.AddChild(childA)
	parent.AddChild(childB)

	childA.MarkModified(engtime.Time(10))
	if parent.LastModifiedTime() != 10 {
		t.Fatalf("expected parent time 10, got %v", parent.LastModifiedTime())
	}
	if childB.LastModifiedTime().Valid() {
		t.Fatal("childB should remain invalid")
	}

	idx := parent.ModifiedIndices(engtime.Time(10))
	if len(idx) != 1 || idx[0] != 0 {
		t.Fatalf("expected modified_indices==[0], got %v", idx)
	}
}

func TestMarkModifiedMonotonic(t *testing.T) {
	a := NewArena(4)
	o := New(a, schema.KindScalar)
	o.MarkModified(engtime.Time(10))
	o.MarkModified(engtime.Time(5))
	if o.LastModifiedTime() != 10 {
		t.Fatalf("expected overlay to stay at t=10, got %v", o.LastModifiedTime())
	}
}

func TestMarkInvalidDoesNotPropagate(t *testing.T) {
	a := NewArena(8)
	parent := New(a, schema.KindBundle)
	child := New(a, schema.KindScalar)
	parent.AddChild(child)

	child.MarkModified(engtime.Time(10))
	if parent.LastModifiedTime() != 10 {
		t.Fatal("setup: parent should have propagated time")
	}
	child.MarkInvalid()
	if child.Valid() {
		t.Fatal("child should be invalid after MarkInvalid")
	}
	if parent.LastModifiedTime() != 10 {
		t.Fatal("parent time must be unchanged by child invalidation")
	}
}

type countObserver struct{ n int }

func (c *countObserver) Notify(t engtime.Time) { c.n++ }

func TestSubscribeNotify(t *testing.T) {
	a := NewArena(4)
	o := New(a, schema.KindScalar)
	obs := &countObserver{}
	o.Subscribe(obs)
	o.Notify(engtime.Time(1))
	if obs.n != 1 {
		t.Fatalf("expected 1 notification, got %d", obs.n)
	}
	o.Unsubscribe(obs)
	o.Notify(engtime.Time(2))
	if obs.n != 1 {
		t.Fatal("unsubscribed observer should not be notified")
	}
}

func TestSetDeltaLazyCleanup(t *testing.T) {
	a := NewArena(4)
	s := New(a, schema.KindSet)

	s.RecordAdded(0, engtime.Time(100))
	s.RecordAdded(1, engtime.Time(100))
	if !s.HasDeltaAt(engtime.Time(100)) {
		t.Fatal("expected delta at t=100")
	}
	if len(s.AddedIndices()) != 2 {
		t.Fatalf("expected 2 added indices, got %v", s.AddedIndices())
	}

	s.RecordRemoved(0, engtime.Time(200), "removed-value")
	if len(s.AddedIndices()) != 0 {
		t.Fatal("added buffer should be cleared after retarget to new time")
	}
	if len(s.RemovedIndices()) != 1 || s.RemovedIndices()[0] != 0 {
		t.Fatalf("expected removed_indices==[0], got %v", s.RemovedIndices())
	}
	if s.RemovedValues()[0] != "removed-value" {
		t.Fatal("expected buffered removed value to survive")
	}
	if s.HasDeltaAt(engtime.Time(100)) {
		t.Fatal("stale delta at t=100 should have been lazily cleared")
	}
}

func TestMapKeyAddRemoveDelta(t *testing.T) {
	a := NewArena(4)
	m := New(a, schema.KindMap)

	entryA, _ := m.EnsureEntry("a", schema.KindScalar)
	entryA.MarkModified(engtime.Time(10))
	m.RecordKeyAdded("a", engtime.Time(10))

	entryB, _ := m.EnsureEntry("b", schema.KindScalar)
	entryB.MarkModified(engtime.Time(10))
	m.RecordKeyAdded("b", engtime.Time(10))

	if len(m.AddedKeys()) != 2 {
		t.Fatalf("expected 2 added keys at T, got %v", m.AddedKeys())
	}
	if len(m.RemovedKeys()) != 0 {
		t.Fatal("expected no removed keys at T")
	}

	// T+1: remove "a"
	removedEntry, ok := m.Entry("a")
	if !ok {
		t.Fatal("expected entry a to exist before removal")
	}
	m.RemoveEntry("a")
	m.RecordKeyRemoved("a", removedEntry, engtime.Time(11))

	if len(m.AddedKeys()) != 0 {
		t.Fatalf("expected added_key_indices empty at T+1, got %v", m.AddedKeys())
	}
	if len(m.RemovedKeys()) != 1 || m.RemovedKeys()[0] != "a" {
		t.Fatalf("expected removed_key_values==[a], got %v", m.RemovedKeys())
	}
	restored := m.RemovedKeyValues()[0].(Overlay)
	if restored.LastModifiedTime() != engtime.Time(10) {
		t.Fatalf("expected buffered removed value overlay time T==10, got %v", restored.LastModifiedTime())
	}
}

func TestMapClearOnEmptyStillModifies(t *testing.T) {
	a := NewArena(4)
	m := New(a, schema.KindMap)
	if m.Valid() {
		t.Fatal("map should start invalid")
	}
	m.ClearAll(engtime.Time(5))
	if !m.Valid() {
		t.Fatal("explicit clear on empty map must still mark modified")
	}
}
