// Package pushfeed is the external push-source transport for the
// real-time clock (§4.1.1 push protocol, scenario S6): an
// outside-the-graph goroutine that dials a WebSocket feed and, on every
// frame, writes the decoded value into a push-source node's output and
// schedules it via mark_push_node_requires_scheduling. Reconnects with
// exponential backoff, routing each decoded frame through hostbridge
// instead of a fixed wire struct.
package pushfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/google/uuid"

	"tsengine/internal/engclock"
	"tsengine/internal/enginelog"
	"tsengine/internal/hostbridge"
	"tsengine/internal/node"
)

// Config configures the push feed transport.
type Config struct {
	URL               string
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
}

func (c *Config) defaults() {
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 2 * time.Second
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
}

// Feed dials a WebSocket server and pushes each decoded JSON frame into a
// push-source node, waking the real-time clock for every frame.
type Feed struct {
	cfg   Config
	clock *engclock.RealClock
	dest  *node.Node

	// OnReconnect, if set, is called after every reconnect attempt.
	OnReconnect func()
}

// New constructs a Feed that writes decoded frames into dest's main
// output. dest must be a KindPushSource node.
func New(cfg Config, clock *engclock.RealClock, dest *node.Node) (*Feed, error) {
	cfg.defaults()
	return &Feed{cfg: cfg, clock: clock, dest: dest}, nil
}

// Run connects and streams frames until ctx is cancelled, reconnecting
// with exponential backoff on disconnect.
func (f *Feed) Run(ctx context.Context) error {
	delay := f.cfg.ReconnectDelay
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := f.runOnce(ctx)
		if err == nil {
			return nil
		}

		enginelog.Warn(ctx, "pushfeed disconnected, reconnecting", "error", err.Error(), "delay", delay.String())
		if f.OnReconnect != nil {
			f.OnReconnect()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay *= 2
		if delay > f.cfg.MaxReconnectDelay {
			delay = f.cfg.MaxReconnectDelay
		}
	}
}

func (f *Feed) runOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("pushfeed: dial: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var frame map[string]any
		if err := conn.ReadJSON(&frame); err != nil {
			return fmt.Errorf("pushfeed: read: %w", err)
		}
		f.deliver(frame)
	}
}

// deliver writes one decoded frame into the destination node's output and
// schedules it, using a fresh tag per frame so back-to-back frames never
// collide under the scheduler's same-tag replace rule.
func (f *Feed) deliver(frame map[string]any) {
	t := f.clock.Now()
	if err := hostbridge.FromHost(f.dest.MainOutput().View, t, frame); err != nil {
		enginelog.Warn(context.Background(), "pushfeed: decode frame", "error", err.Error())
		return
	}
	tag := "push:" + uuid.NewString()
	if err := f.dest.Scheduler().ScheduleOnWallClock(t, tag, f.clock.EvaluationTime(), f.clock); err != nil {
		enginelog.Warn(context.Background(), "pushfeed: schedule frame", "error", err.Error())
	}
}
