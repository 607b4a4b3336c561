package node

import (
	"errors"
	"strings"
	"testing"
	"time"

	"tsengine/internal/engclock"
	"tsengine/internal/engtime"
	"tsengine/internal/overlay"
	"tsengine/internal/schema"
)

func newTestNode(t *testing.T, path string, clock engclock.Clock) *Node {
	t.Helper()
	arena := overlay.NewArena(8)
	return New(path, "fn() -> float64", KindCompute, schema.NewScalar(schema.Float64), 0, arena, clock, nil)
}

func TestLifecycleHappyPath(t *testing.T) {
	clock := engclock.NewSimClock(0, time.Millisecond)
	n := newTestNode(t, "root.n", clock)

	if err := n.Initialise(); err != nil {
		t.Fatalf("initialise: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if n.State() != Started {
		t.Fatalf("expected Started, got %v", n.State())
	}
	if err := n.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := n.Dispose(); err != nil {
		t.Fatalf("dispose: %v", err)
	}
}

func TestLifecycleRejectsOutOfOrderCalls(t *testing.T) {
	clock := engclock.NewSimClock(0, time.Millisecond)
	n := newTestNode(t, "root.n", clock)

	if err := n.Start(); err == nil {
		t.Fatal("expected Start before Initialise to fail")
	}
}

func TestEvalSkippedWhenValidInputNotValid(t *testing.T) {
	clock := engclock.NewSimClock(0, time.Millisecond)
	n := newTestNode(t, "root.n", clock)
	n.AddInput("x", schema.NewScalar(schema.Float64), overlay.NewArena(4))
	n.SetOptions(Options{TraceBackDepth: 4})

	ran := false
	n.SetEval(func(n *Node, t engtime.Time) error { ran = true; return nil })

	_ = n.Initialise()
	_ = n.Start()

	if err := n.Eval(100, ""); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if ran {
		t.Fatal("eval must not run user code while a valid_inputs input is invalid")
	}
}

func TestErrorCaptureRoutesToErrorOutput(t *testing.T) {
	clock := engclock.NewSimClock(0, time.Millisecond)
	n := newTestNode(t, "root.failing", clock)
	n.SetOptions(Options{CaptureException: true, TraceBackDepth: 2})
	n.SetEval(func(n *Node, t engtime.Time) error { return errors.New("boom") })

	_ = n.Initialise()
	_ = n.Start()

	if err := n.Eval(50, ""); err != nil {
		t.Fatalf("expected captured error not to propagate, got %v", err)
	}
	eo := n.ErrorOutput()
	if !eo.Valid() {
		t.Fatal("expected error_output to be modified")
	}
	msg := eo.FieldByName("message").Scalar().(string)
	if !strings.Contains(msg, "root.failing") {
		t.Fatalf("expected message to contain node path, got %q", msg)
	}
}

func TestErrorPropagatesWithoutCapture(t *testing.T) {
	clock := engclock.NewSimClock(0, time.Millisecond)
	n := newTestNode(t, "root.failing", clock)
	n.SetEval(func(n *Node, t engtime.Time) error { return errors.New("boom") })

	_ = n.Initialise()
	_ = n.Start()

	if err := n.Eval(50, ""); err == nil {
		t.Fatal("expected uncaptured error to propagate")
	}
}
