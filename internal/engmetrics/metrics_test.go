package engmetrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestNewRegistersCollectorsOnce(t *testing.T) {
	m := New()
	if m.NodeEvalsTotal == nil || m.NodeEvalDuration == nil || m.NodeErrorsTotal == nil {
		t.Fatal("expected all collectors to be constructed")
	}
	m.NodeEvalsTotal.Inc()
	m.NodeEvalDuration.WithLabelValues("root.n").Observe(0.01)
	m.NodeErrorsTotal.WithLabelValues("root.n").Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	promhttp.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "tsengine_node_evals_total") {
		t.Fatal("expected node evals counter in exposition output")
	}
	if !strings.Contains(body, "tsengine_node_errors_total") {
		t.Fatal("expected node errors counter in exposition output")
	}
}

func TestServerStartStop(t *testing.T) {
	srv := NewServer(":0")
	srv.Start()
	if err := srv.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
