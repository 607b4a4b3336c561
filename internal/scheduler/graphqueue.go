package scheduler

import (
	"container/heap"

	"tsengine/internal/engtime"
)

type headEntry struct {
	nodeIndex int
	when      engtime.Time
}

type headHeap []headEntry

func (h headHeap) Len() int { return len(h) }
func (h headHeap) Less(i, j int) bool {
	if h[i].when != h[j].when {
		return h[i].when < h[j].when
	}
	return h[i].nodeIndex < h[j].nodeIndex
}
func (h headHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *headHeap) Push(x any)   { *h = append(*h, x.(headEntry)) }
func (h *headHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// GraphQueue is the graph-level min-heap keyed by (next_scheduled_time,
// node_index) (§4.1.3). Node schedulers push a fresh entry every time
// their own head changes; stale entries left behind by an earlier head
// are discarded lazily as the queue is read, rather than hunted down and
// removed eagerly.
type GraphQueue struct {
	h     headHeap
	heads map[int]engtime.Time
	live  map[int]bool
}

// NewGraphQueue returns an empty graph priority queue.
func NewGraphQueue() *GraphQueue {
	return &GraphQueue{heads: make(map[int]engtime.Time), live: make(map[int]bool)}
}

// Update records nodeIndex's current head. Pass this as a NodeScheduler's
// onHeadChanged callback to keep the queue in sync.
func (q *GraphQueue) Update(nodeIndex int, when engtime.Time, hasHead bool) {
	if !hasHead {
		delete(q.heads, nodeIndex)
		delete(q.live, nodeIndex)
		return
	}
	q.heads[nodeIndex] = when
	q.live[nodeIndex] = true
	heap.Push(&q.h, headEntry{nodeIndex: nodeIndex, when: when})
}

// NextTime returns the earliest live head time across all nodes.
func (q *GraphQueue) NextTime() (engtime.Time, bool) {
	q.dropStale()
	if q.h.Len() == 0 {
		return 0, false
	}
	return q.h[0].when, true
}

// NodesAt drains and returns every node index whose current head equals
// t, in node-index order (ties at a single time broken by node index,
// §4.1.2 ordering policy).
func (q *GraphQueue) NodesAt(t engtime.Time) []int {
	q.dropStale()
	var out []int
	for q.h.Len() > 0 && q.h[0].when == t {
		e := heap.Pop(&q.h).(headEntry)
		if q.live[e.nodeIndex] && q.heads[e.nodeIndex] == e.when {
			out = append(out, e.nodeIndex)
			delete(q.live, e.nodeIndex)
		}
	}
	return out
}

func (q *GraphQueue) dropStale() {
	for q.h.Len() > 0 {
		top := q.h[0]
		if q.live[top.nodeIndex] && q.heads[top.nodeIndex] == top.when {
			return
		}
		heap.Pop(&q.h)
	}
}
