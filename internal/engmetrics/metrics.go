// Package engmetrics exposes the engine's Prometheus instrumentation: node
// evaluation count, per-node evaluation latency, scheduler queue depth, and
// error/push counters, trimmed to what a graph-evaluation engine emits
// rather than a market-data pipeline.
package engmetrics

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector the engine registers.
type Metrics struct {
	NodeEvalsTotal       prometheus.Counter
	NodeEvalDuration *prometheus.HistogramVec // labels: node_path
	NodeErrorsTotal  *prometheus.CounterVec   // labels: node_path
	QueueDepth       prometheus.Gauge
	PushEventsTotal  prometheus.Counter
	PersistWriteDur  prometheus.Histogram
}

// New registers and returns the engine's metric set.
func New() *Metrics {
	m := &Metrics{
		NodeEvalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsengine_node_evals_total",
			Help: "Total node evaluations run by the graph",
		}),
		NodeEvalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tsengine_node_eval_duration_seconds",
			Help:    "Per-node evaluation latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"node_path"}),
		NodeErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsengine_node_errors_total",
			Help: "NodeError occurrences routed to error_output, by node path",
		}, []string{"node_path"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tsengine_graph_queue_depth",
			Help: "Number of distinct scheduled times currently pending in the graph queue",
		}),
		PushEventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsengine_push_events_total",
			Help: "Total push-source events consumed by the real-time clock",
		}),
		PersistWriteDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tsengine_persist_write_duration_seconds",
			Help:    "Recordable-state persistence write latency",
			Buckets: prometheus.DefBuckets,
		}),
	}

	prometheus.MustRegister(
		m.NodeEvalsTotal,
		m.NodeEvalDuration,
		m.NodeErrorsTotal,
		m.QueueDepth,
		m.PushEventsTotal,
		m.PersistWriteDur,
	)
	return m
}

// Server exposes /metrics over HTTP.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer builds a metrics HTTP server listening on addr.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{addr: addr, srv: &http.Server{Addr: addr, Handler: mux}}
}

// Start launches the server in a goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[engmetrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
