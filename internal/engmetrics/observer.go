package engmetrics

import (
	"time"

	"tsengine/internal/engtime"
	"tsengine/internal/node"
)

// EvalObserver times every node evaluation and counts NodeErrors, wired
// into a graph via Graph.AddEvalObserver (§11, §12 "before/after-node
// callbacks list").
type EvalObserver struct {
	m       *Metrics
	started map[string]time.Time
}

// NewEvalObserver returns an observer reporting into m.
func NewEvalObserver(m *Metrics) *EvalObserver {
	return &EvalObserver{m: m, started: make(map[string]time.Time)}
}

// BeforeEval implements graph.EvalObserver.
func (o *EvalObserver) BeforeEval(n *node.Node, t engtime.Time) {
	o.started[n.Path()] = time.Now()
}

// AfterEval implements graph.EvalObserver.
func (o *EvalObserver) AfterEval(n *node.Node, t engtime.Time) {
	start, ok := o.started[n.Path()]
	if !ok {
		return
	}
	delete(o.started, n.Path())
	o.m.NodeEvalDuration.WithLabelValues(n.Path()).Observe(time.Since(start).Seconds())
	o.m.NodeEvalsTotal.Inc()
	if n.ErrorOutput().Modified(t) {
		o.m.NodeErrorsTotal.WithLabelValues(n.Path()).Inc()
	}
}
