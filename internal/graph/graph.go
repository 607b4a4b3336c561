// Package graph holds nodes, the scheduler, and the clock, and drives one
// evaluation cycle end to end (C9 in SPEC_FULL.md, spec §4.4.4, §5).
package graph

import (
	"sort"

	"tsengine/internal/engclock"
	"tsengine/internal/engtime"
	"tsengine/internal/node"
	"tsengine/internal/overlay"
	"tsengine/internal/scheduler"
	"tsengine/internal/schema"
)

// LifecycleObserver is notified of whole-engine start/stop transitions
// (§12 "evaluation_engine.cpp before/after-node callbacks list").
type LifecycleObserver interface {
	OnEngineStart()
	OnEngineStop()
}

// EvalObserver is notified before/after every node evaluation (§4.4.3
// steps 1 and 4, §6.1 item 3).
type EvalObserver interface {
	BeforeEval(n *node.Node, t engtime.Time)
	AfterEval(n *node.Node, t engtime.Time)
}

// Graph is one evaluation graph: a flat node list, the graph-level
// priority queue, and the clock driving it.
type Graph struct {
	nodes []*node.Node
	queue *scheduler.GraphQueue
	clock engclock.Clock

	endTime     engtime.Time
	hasEndTime  bool
	stopRequested bool

	lifecycle []LifecycleObserver
	evalObs   []EvalObserver

	path string // prefix applied to nested-graph node paths (§4.4.5)
}

// New constructs an empty graph driven by clock, with node paths prefixed
// by path (use "" for the outermost graph).
func New(clock engclock.Clock, path string) *Graph {
	return &Graph{queue: scheduler.NewGraphQueue(), clock: clock, path: path}
}

// SetEndTime bounds the simulation: advance_engine_time drains the
// current tick and stops once past end (§5 "Cancellation and timeouts").
func (g *Graph) SetEndTime(t engtime.Time) {
	g.endTime = t
	g.hasEndTime = true
}

// AddLifecycleObserver/AddEvalObserver register engine-wide callbacks.
func (g *Graph) AddLifecycleObserver(o LifecycleObserver) { g.lifecycle = append(g.lifecycle, o) }
func (g *Graph) AddEvalObserver(o EvalObserver)            { g.evalObs = append(g.evalObs, o) }

// AddNode constructs and registers a node named name (joined under the
// graph's path prefix) with node_index assigned in insertion order
// (§4.1.2 tie-break, §4.4.5 "subgraph node ids are prefixed").
func (g *Graph) AddNode(name, signature string, kind node.Kind, outputSchema *schema.TSSchema, arena *overlay.Arena) *node.Node {
	idx := len(g.nodes)
	path := name
	if g.path != "" {
		path = g.path + "." + name
	}
	n := node.New(path, signature, kind, outputSchema, idx, arena, g.clock, g.queue.Update)
	for _, o := range g.evalObs {
		obs := o
		n.AddBeforeEval(obs.BeforeEval)
		n.AddAfterEval(obs.AfterEval)
	}
	g.nodes = append(g.nodes, n)
	return n
}

// Nodes returns every node registered on this graph, in node-index order.
func (g *Graph) Nodes() []*node.Node { return g.nodes }

// Clock returns the clock driving this graph.
func (g *Graph) Clock() engclock.Clock { return g.clock }

// RequestStop sets the stop flag; the run loop drains the current tick
// and exits (§5).
func (g *Graph) RequestStop() { g.stopRequested = true }

// RunAt evaluates every node scheduled at t, in ascending node_index
// order — used both by the outer loop for an ordinary tick, and by a
// parent node embedding this graph as a nested subgraph reusing the same
// clock (§4.4.5). It implements node.Subgraph. A node evaluated within
// this tick (e.g. via a synchronous Ref rebind, §4.3.3) can schedule a
// downstream node for the same t; RunAt keeps draining newly-scheduled
// same-tick work until none remains, so "subscribers scheduled for the
// same tick run" (§4.3.3) holds even when the scheduling happens mid-tick.
func (g *Graph) RunAt(t engtime.Time) error {
	for {
		indices := g.queue.NodesAt(t)
		if len(indices) == 0 {
			return nil
		}
		sort.Ints(indices)
		for _, idx := range indices {
			n := g.nodes[idx]
			_, tag, _ := n.Scheduler().Head()
			if err := n.Eval(t, tag); err != nil {
				return err
			}
		}
	}
}

// Run drives the evaluation loop until the graph queue is empty or a stop
// is requested: ask the clock for the next event time, advance to it, run
// every node scheduled there, repeat (§4.4 control flow).
func (g *Graph) Run() error {
	for o := range g.lifecycle {
		g.lifecycle[o].OnEngineStart()
	}
	defer func() {
		for o := range g.lifecycle {
			g.lifecycle[o].OnEngineStop()
		}
	}()

	for {
		next, has := g.queue.NextTime()
		if !has {
			return nil
		}
		if g.stopRequested {
			next = engtime.Min(next, g.clock.EvaluationTime().Add(engtime.MinStep))
		}
		if g.hasEndTime && next > g.endTime.Add(engtime.MinStep) {
			next = g.endTime.Add(engtime.MinStep)
		}

		evalTime, err := g.clock.AdvanceToNextScheduledTime(next)
		if err != nil {
			return err
		}
		if err := g.RunAt(evalTime); err != nil {
			return err
		}
		if g.hasEndTime && evalTime >= g.endTime.Add(engtime.MinStep) {
			return nil
		}
		if g.stopRequested {
			return nil
		}
	}
}
