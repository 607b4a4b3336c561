package scheduler

import (
	"testing"

	"tsengine/internal/engtime"
)

func TestScheduleNoOpAtOrBeforeEvaluationTime(t *testing.T) {
	s := New(0, nil)
	s.MarkStarted()
	s.Schedule(engtime.Time(10), "", engtime.Time(10))
	if _, _, has := s.Head(); has {
		t.Fatal("schedule(when == evaluation_time) must be a no-op")
	}
	s.Schedule(engtime.Time(11), "", engtime.Time(10))
	if when, _, has := s.Head(); !has || when != 11 {
		t.Fatal("schedule(when == evaluation_time + MIN_STEP) must run next tick")
	}
}

func TestScheduleReplacesOldTagTime(t *testing.T) {
	s := New(0, nil)
	s.MarkStarted()
	s.Schedule(engtime.Time(20), "poll", engtime.Time(0))
	s.Schedule(engtime.Time(5), "poll", engtime.Time(0))
	when, ok := s.PopTag("poll")
	if !ok || when != 5 {
		t.Fatalf("expected the later schedule call to replace the earlier one, got %v", when)
	}
}

func TestPreStartScheduleUsesStartSentinel(t *testing.T) {
	s := New(0, nil)
	s.Schedule(engtime.Time(9999), "whatever", engtime.Time(0))
	if !s.HasPendingStart() {
		t.Fatal("pre-start schedule must be recorded under the start sentinel")
	}
}

func TestAdvanceDropsPastEvents(t *testing.T) {
	s := New(0, nil)
	s.MarkStarted()
	s.Schedule(engtime.Time(5), "a", engtime.Time(0))
	s.Schedule(engtime.Time(15), "b", engtime.Time(0))
	s.Advance(engtime.Time(10))
	if s.HasTag("a") {
		t.Fatal("event at or before evaluation_time must be dropped by Advance")
	}
	if !s.HasTag("b") {
		t.Fatal("event after evaluation_time must survive Advance")
	}
}

func TestGraphQueueOrdersByTimeThenNodeIndex(t *testing.T) {
	q := NewGraphQueue()
	q.Update(2, engtime.Time(10), true)
	q.Update(0, engtime.Time(10), true)
	q.Update(1, engtime.Time(5), true)

	next, has := q.NextTime()
	if !has || next != 5 {
		t.Fatalf("expected earliest time 5, got %v", next)
	}
	if nodes := q.NodesAt(5); len(nodes) != 1 || nodes[0] != 1 {
		t.Fatalf("expected node 1 at t=5, got %v", nodes)
	}
	nodes := q.NodesAt(10)
	if len(nodes) != 2 || nodes[0] != 0 || nodes[1] != 2 {
		t.Fatalf("expected nodes [0,2] ordered by index at t=10, got %v", nodes)
	}
}

func TestGraphQueueDropsStaleEntriesOnHeadUpdate(t *testing.T) {
	q := NewGraphQueue()
	q.Update(0, engtime.Time(5), true)
	q.Update(0, engtime.Time(20), true) // node 0's head moved later
	if nodes := q.NodesAt(5); len(nodes) != 0 {
		t.Fatalf("stale head at t=5 should have been dropped, got %v", nodes)
	}
	if nodes := q.NodesAt(20); len(nodes) != 1 || nodes[0] != 0 {
		t.Fatalf("expected node 0 at its current head t=20, got %v", nodes)
	}
}

func TestNodeSchedulerFeedsGraphQueue(t *testing.T) {
	q := NewGraphQueue()
	s := New(3, q.Update)
	s.MarkStarted()
	s.Schedule(engtime.Time(7), "", engtime.Time(0))
	if next, has := q.NextTime(); !has || next != 7 {
		t.Fatalf("expected graph queue to learn the node's head, got %v", next)
	}
}
