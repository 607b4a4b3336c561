package redis

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestWriter(t *testing.T) (*Writer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	w, err := New(Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w, mr
}

func TestWriteSnapshotThenReadRange(t *testing.T) {
	w, _ := newTestWriter(t)
	ctx := context.Background()

	if err := w.WriteSnapshot(ctx, "replay-1", 100, map[string]any{"x": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteSnapshot(ctx, "replay-1", 200, map[string]any{"x": 2}); err != nil {
		t.Fatalf("write: %v", err)
	}

	msgs, err := w.ReadRange(ctx, "replay-1")
	if err != nil {
		t.Fatalf("read range: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0].Values["data"].(string), `"x":1`) {
		t.Fatalf("unexpected first entry payload: %v", msgs[0].Values)
	}
}

func TestStreamKeyNamespacesByReplayID(t *testing.T) {
	if got := streamKey("abc"); got != "tsengine:record:abc" {
		t.Fatalf("unexpected stream key: %s", got)
	}
}
