package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	dir := t.TempDir()
	w, err := New(Config{DBPath: filepath.Join(dir, "state.db")})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestWriteSnapshotThenReadRange(t *testing.T) {
	w := newTestWriter(t)

	w.WriteSnapshot("replay-1", 100, []byte(`{"x":1}`))
	w.WriteSnapshot("replay-1", 200, []byte(`{"x":2}`))
	w.WriteSnapshot("replay-2", 50, []byte(`{"x":9}`))

	// Wait one flush period so the background ticker commits the batch.
	time.Sleep(defaultFlushDelay + 50*time.Millisecond)

	rows, err := w.ReadRange(context.Background(), "replay-1")
	if err != nil {
		t.Fatalf("read range: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for replay-1, got %d", len(rows))
	}
	if string(rows[0]) != `{"x":1}` || string(rows[1]) != `{"x":2}` {
		t.Fatalf("rows out of order or wrong content: %v", rows)
	}
}

func TestReadRangeEmptyForUnknownReplay(t *testing.T) {
	w := newTestWriter(t)
	rows, err := w.ReadRange(context.Background(), "nope")
	if err != nil {
		t.Fatalf("read range: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
