// Package scheduler implements each node's tagged (time, tag) schedule
// and the graph-level min-heap that drives which node evaluates next (C7
// in SPEC_FULL.md, spec §4.1.2-4.1.3).
package scheduler

import (
	"tsengine/internal/engclock"
	"tsengine/internal/engineerr"
	"tsengine/internal/engtime"
)

// startTag is the sentinel under which a pre-start schedule call is
// recorded, so it can be replayed as a single notification at the node's
// first eval (§4.4.2 "replay any pre-start 'start' tag").
const startTag = "start"

type event struct {
	when engtime.Time
	tag  string
}

// NodeScheduler tracks one node's pending scheduled events (§4.1.2).
type NodeScheduler struct {
	index   int
	started bool

	byTag       map[string]engtime.Time
	events      []event // kept sorted ascending by when; ties broken by tag
	wallClocked map[string]bool

	// onHeadChanged wires this scheduler into the graph priority queue;
	// called whenever the node's earliest pending time changes.
	onHeadChanged func(nodeIndex int, head engtime.Time, has bool)
}

// New returns a NodeScheduler for the node at index, reporting head
// changes through onHeadChanged (may be nil, e.g. in isolated tests).
func New(index int, onHeadChanged func(nodeIndex int, head engtime.Time, has bool)) *NodeScheduler {
	return &NodeScheduler{
		index:         index,
		byTag:         make(map[string]engtime.Time),
		wallClocked:   make(map[string]bool),
		onHeadChanged: onHeadChanged,
	}
}

// MarkStarted transitions the scheduler out of its pre-start mode. The
// caller (node lifecycle, §4.4.2) is responsible for replaying the start
// tag afterward if HasTag(startTag) was true.
func (s *NodeScheduler) MarkStarted() { s.started = true }

// HasPendingStart reports whether a pre-start schedule call was recorded
// under the start sentinel.
func (s *NodeScheduler) HasPendingStart() bool { return s.HasTag(startTag) }

// Schedule inserts or replaces a (when, tag) pair (§4.1.2). Before the
// node has started, any schedule call is collapsed into the start
// sentinel tag regardless of when. After start, when <= evalTime is a
// silent no-op.
func (s *NodeScheduler) Schedule(when engtime.Time, tag string, evalTime engtime.Time) {
	if !s.started {
		s.insert(when, startTag)
		s.notifyHead()
		return
	}
	if when <= evalTime {
		return
	}
	if tag != "" {
		s.removeTag(tag)
	}
	s.insert(when, tag)
	s.notifyHead()
}

// NotifyAt enqueues this node at exactly when, the current tick in the
// usual case, bypassing Schedule's when <= evalTime self-reschedule
// guard. That guard is correct for a node rescheduling itself, but
// Notify means "an input you depend on changed this tick" and must still
// land in the current tick's batch so RunAt's drain evaluates it in
// node-index order, even though when is not in the future relative to
// evalTime (§5 "scheduled later in the same tick").
func (s *NodeScheduler) NotifyAt(when engtime.Time) {
	if !s.started {
		s.insert(when, startTag)
		s.notifyHead()
		return
	}
	s.insert(when, "")
	s.notifyHead()
}

// ScheduleAfter is the duration-relative form of Schedule.
func (s *NodeScheduler) ScheduleAfter(d engtime.Time, tag string, evalTime engtime.Time) {
	s.Schedule(evalTime.Add(d), tag, evalTime)
}

// ScheduleOnWallClock issues set_alarm to clock in addition to recording
// the ordinary (when, tag) pair, per §4.1.2's real-time alarm path. The
// alarm callback moves the event into the normal advance loop by simply
// leaving the already-inserted entry in place and notifying the clock;
// requires a non-empty tag (§7 SchedulingError otherwise).
func (s *NodeScheduler) ScheduleOnWallClock(when engtime.Time, tag string, evalTime engtime.Time, clock *engclock.RealClock) error {
	if tag == "" {
		return &engineerr.SchedulingError{Reason: "schedule(on_wall_clock=true) requires a tag"}
	}
	s.Schedule(when, tag, evalTime)
	s.wallClocked[tag] = true
	clock.SetAlarm(when, tag, func(engtime.Time) {
		clock.MarkPushNodeRequiresScheduling()
	})
	return nil
}

// UnSchedule removes by tag, or pops the earliest event if tag == "".
func (s *NodeScheduler) UnSchedule(tag string) {
	if tag != "" {
		s.removeTag(tag)
	} else if len(s.events) > 0 {
		s.removeTag(s.events[0].tag)
	}
	s.notifyHead()
}

// HasTag reports whether tag currently has a pending scheduled time.
func (s *NodeScheduler) HasTag(tag string) bool {
	_, ok := s.byTag[tag]
	return ok
}

// PopTag removes and returns the scheduled time for tag, if present.
func (s *NodeScheduler) PopTag(tag string) (engtime.Time, bool) {
	when, ok := s.byTag[tag]
	if !ok {
		return 0, false
	}
	s.removeTag(tag)
	s.notifyHead()
	return when, true
}

// Head returns the earliest pending (time, tag), if any.
func (s *NodeScheduler) Head() (engtime.Time, string, bool) {
	if len(s.events) == 0 {
		return 0, "", false
	}
	return s.events[0].when, s.events[0].tag, true
}

// Advance drops every (t, tag) with t <= evaluationTime — called once the
// node has evaluated at that time (§4.1.2).
func (s *NodeScheduler) Advance(evaluationTime engtime.Time) {
	kept := s.events[:0]
	for _, e := range s.events {
		if e.when <= evaluationTime {
			delete(s.byTag, e.tag)
			delete(s.wallClocked, e.tag)
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	s.notifyHead()
}

func (s *NodeScheduler) insert(when engtime.Time, tag string) {
	if tag != "" {
		if _, exists := s.byTag[tag]; exists {
			s.removeTag(tag)
		}
		s.byTag[tag] = when
	}
	s.events = append(s.events, event{when: when, tag: tag})
	sortEvents(s.events)
}

func (s *NodeScheduler) removeTag(tag string) {
	if _, ok := s.byTag[tag]; !ok {
		return
	}
	delete(s.byTag, tag)
	delete(s.wallClocked, tag)
	for i, e := range s.events {
		if e.tag == tag {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return
		}
	}
}

func (s *NodeScheduler) notifyHead() {
	if s.onHeadChanged == nil {
		return
	}
	when, _, has := s.Head()
	s.onHeadChanged(s.index, when, has)
}

func sortEvents(e []event) {
	for i := 1; i < len(e); i++ {
		for j := i; j > 0 && eventLess(e[j], e[j-1]); j-- {
			e[j], e[j-1] = e[j-1], e[j]
		}
	}
}

func eventLess(a, b event) bool {
	if a.when != b.when {
		return a.when < b.when
	}
	return a.tag < b.tag
}
