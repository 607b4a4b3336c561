// Package redis persists recordable node state (§6.4) to Redis Streams,
// keyed by record_replay_id: an XADD-with-trim pattern with a
// ping-on-connect health check, adapted from fixed domain rows to
// arbitrary Bundle-shaped node snapshots.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// streamMaxLen bounds how much recorded history a stream retains; old
// entries are trimmed approximately on every XADD.
const streamMaxLen = 10000

// Config configures the Redis persistence backend.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Writer appends recordable-state snapshots to one stream per
// record_replay_id.
type Writer struct {
	client *goredis.Client
}

// New connects to Redis and verifies reachability.
func New(cfg Config) (*Writer, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("persist/redis: ping: %w", err)
	}
	return &Writer{client: client}, nil
}

// Client exposes the underlying client for health checks.
func (w *Writer) Client() *goredis.Client { return w.client }

// WriteSnapshot appends one recordable-state snapshot (a host-rendered
// Bundle from hostbridge.ToHost) to the stream for replayID at t.
func (w *Writer) WriteSnapshot(ctx context.Context, replayID string, t int64, snapshot any) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("persist/redis: marshal snapshot: %w", err)
	}
	stream := streamKey(replayID)
	return w.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"t":    t,
			"data": payload,
		},
	}).Err()
}

// ReadRange returns every entry recorded for replayID (for replay
// reconstruction, §6.4).
func (w *Writer) ReadRange(ctx context.Context, replayID string) ([]goredis.XMessage, error) {
	return w.client.XRange(ctx, streamKey(replayID), "-", "+").Result()
}

// Close releases the underlying connection.
func (w *Writer) Close() error { return w.client.Close() }

func streamKey(replayID string) string { return "tsengine:record:" + replayID }
