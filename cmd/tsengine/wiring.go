package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"tsengine/internal/engclock"
	"tsengine/internal/engconfig"
	"tsengine/internal/enginelog"
	"tsengine/internal/engmetrics"
	"tsengine/internal/engtime"
	"tsengine/internal/graph"
	"tsengine/internal/hostbridge"
	"tsengine/internal/node"
	"tsengine/internal/overlay"
	"tsengine/internal/schema"
)

// wiringDoc is the declarative graph description the CLI builds from.
// It covers a small builtin node library — enough to exercise the engine
// end to end without embedding a scripting language in the CLI.
type wiringDoc struct {
	Mode       string       `json:"mode,omitempty"`
	IntervalMs int          `json:"interval_ms,omitempty"`
	Nodes      []wiringNode `json:"nodes"`
}

type wiringNode struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"` // heartbeat_source | passthrough | print_sink
	Input string `json:"input,omitempty"`
}

func loadWiring(path string) (*wiringDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wiring file: %w", err)
	}
	defer f.Close()

	var doc wiringDoc
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode wiring file: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("wiring file declares no nodes")
	}
	if doc.IntervalMs <= 0 {
		doc.IntervalMs = 1000
	}
	return &doc, nil
}

// buildGraph constructs a runnable graph from doc, wiring nodes in
// declaration order (so an "input" reference must name a node declared
// earlier in the file).
func buildGraph(cfg *engconfig.Config, doc *wiringDoc, metrics *engmetrics.Metrics) (*graph.Graph, error) {
	mode := engconfig.Mode(doc.Mode)
	if mode == "" {
		mode = cfg.Mode
	}

	var clock engclock.Clock
	if mode == engconfig.ModeRealtime {
		clock = engclock.NewRealClock(time.Millisecond)
	} else {
		clock = engclock.NewSimClock(0, time.Millisecond)
	}

	g := graph.New(clock, "")
	g.AddEvalObserver(engmetrics.NewEvalObserver(metrics))

	i64 := hostbridge.NewScalarSchema(schema.Int64)
	byName := make(map[string]*node.Node, len(doc.Nodes))
	interval := engtime.Time(doc.IntervalMs) * 1000 // ms -> us

	type bindLink struct{ dst, src *node.Node }
	var binds []bindLink

	for _, decl := range doc.Nodes {
		switch decl.Kind {
		case "heartbeat_source":
			n := g.AddNode(decl.Name, "heartbeat() -> i64", node.KindSource, i64, overlay.NewArena(4))
			n.SetOptions(node.Options{UsesScheduler: true})
			var counter int64
			n.SetEval(func(n *node.Node, tm engtime.Time) error {
				counter++
				n.MainOutput().SetScalar(tm, counter)
				scheduleNext(n, tm, interval, g.Clock())
				return nil
			})
			byName[decl.Name] = n

		case "passthrough":
			upstream, ok := byName[decl.Input]
			if !ok {
				return nil, fmt.Errorf("node %q: unknown input %q", decl.Name, decl.Input)
			}
			n := g.AddNode(decl.Name, "passthrough(in: i64) -> i64", node.KindCompute, i64, overlay.NewArena(4))
			n.AddInput("in", i64, overlay.NewArena(4))
			n.SetEval(func(n *node.Node, tm engtime.Time) error {
				in, _ := n.Input("in")
				n.MainOutput().SetScalar(tm, in.Scalar())
				return nil
			})
			byName[decl.Name] = n
			binds = append(binds, bindLink{dst: n, src: upstream})

		case "print_sink":
			upstream, ok := byName[decl.Input]
			if !ok {
				return nil, fmt.Errorf("node %q: unknown input %q", decl.Name, decl.Input)
			}
			n := g.AddNode(decl.Name, "print_sink(in: i64)", node.KindSink, i64, overlay.NewArena(4))
			n.AddInput("in", i64, overlay.NewArena(4))
			n.SetEval(func(n *node.Node, tm engtime.Time) error {
				in, _ := n.Input("in")
				h, err := hostbridge.ToHost(in.View)
				if err != nil {
					return err
				}
				fmt.Printf("%s @ %d: %v\n", n.Path(), tm, h)
				return nil
			})
			byName[decl.Name] = n
			binds = append(binds, bindLink{dst: n, src: upstream})

		default:
			return nil, fmt.Errorf("node %q: unknown kind %q", decl.Name, decl.Kind)
		}
	}

	for _, n := range g.Nodes() {
		if err := n.Initialise(); err != nil {
			return nil, fmt.Errorf("initialise %s: %w", n.Path(), err)
		}
	}
	for _, link := range binds {
		if err := link.dst.BindInput("in", link.src.MainOutput()); err != nil {
			return nil, fmt.Errorf("bind %s.in: %w", link.dst.Path(), err)
		}
	}

	for _, n := range g.Nodes() {
		if err := n.Start(); err != nil {
			return nil, fmt.Errorf("start %s: %w", n.Path(), err)
		}
	}

	for _, n := range g.Nodes() {
		if n.Signature() == "heartbeat() -> i64" {
			n.Scheduler().Schedule(clock.EvaluationTime().Add(interval), n.Path()+":tick", clock.EvaluationTime())
		}
	}

	return g, nil
}

func scheduleNext(n *node.Node, tm, interval engtime.Time, clock engclock.Clock) {
	next := tm.Add(interval)
	if rc, ok := clock.(*engclock.RealClock); ok {
		if err := n.Scheduler().ScheduleOnWallClock(next, n.Path()+":tick", tm, rc); err != nil {
			enginelog.Warn(context.Background(), "schedule heartbeat tick", "node", n.Path(), "error", err.Error())
		}
		return
	}
	n.Scheduler().Schedule(next, n.Path()+":tick", tm)
}

func printWiring(w io.Writer, doc *wiringDoc) {
	fmt.Fprintf(w, "mode: %s (interval %dms)\n", doc.Mode, doc.IntervalMs)
	for i, n := range doc.Nodes {
		if n.Input != "" {
			fmt.Fprintf(w, "%d. %s [%s] <- %s\n", i, n.Name, n.Kind, n.Input)
		} else {
			fmt.Fprintf(w, "%d. %s [%s]\n", i, n.Name, n.Kind)
		}
	}
}
