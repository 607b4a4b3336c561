// Package sqlite is the alternate recordable-state persistence backend
// (§6.4), selected via engconfig when redis isn't configured: WAL mode,
// a single-writer connection pool, and a batched-transaction commit loop
// over a generic (record_replay_id, time, json snapshot) table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultBatchSize  = 100
	defaultFlushDelay = 200 * time.Millisecond
)

// Config configures the SQLite persistence backend.
type Config struct {
	DBPath string
}

// Writer is a single-goroutine SQLite writer with transaction batching.
type Writer struct {
	db        *sql.DB
	batchSize int
	flushTick time.Duration

	pending chan snapshotRow
	done    chan struct{}
}

type snapshotRow struct {
	replayID string
	t        int64
	data     []byte
}

// DB exposes the underlying handle for health checks.
func (w *Writer) DB() *sql.DB { return w.db }

// New opens (creating if absent) the SQLite database at cfg.DBPath in WAL
// mode and ensures the recordable-state schema exists.
func New(cfg Config) (*Writer, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("persist/sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS node_snapshots (
			record_replay_id TEXT    NOT NULL,
			t                INTEGER NOT NULL,
			data             TEXT    NOT NULL,
			PRIMARY KEY (record_replay_id, t)
		);
	`); err != nil {
		return nil, fmt.Errorf("persist/sqlite: schema: %w", err)
	}

	w := &Writer{
		db:        db,
		batchSize: defaultBatchSize,
		flushTick: defaultFlushDelay,
		pending:   make(chan snapshotRow, 1024),
		done:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// WriteSnapshot enqueues one recordable-state snapshot for batched commit.
func (w *Writer) WriteSnapshot(replayID string, t int64, data []byte) {
	w.pending <- snapshotRow{replayID: replayID, t: t, data: data}
}

// run drains pending writes into batched transactions, committing either
// when batchSize rows have accumulated or flushTick elapses, whichever
// comes first.
func (w *Writer) run() {
	ticker := time.NewTicker(w.flushTick)
	defer ticker.Stop()

	batch := make([]snapshotRow, 0, w.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		w.commit(batch)
		batch = batch[:0]
	}

	for {
		select {
		case row, ok := <-w.pending:
			if !ok {
				flush()
				close(w.done)
				return
			}
			batch = append(batch, row)
			if len(batch) >= w.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (w *Writer) commit(rows []snapshotRow) {
	tx, err := w.db.Begin()
	if err != nil {
		return
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO node_snapshots (record_replay_id, t, data) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return
	}
	for _, r := range rows {
		stmt.Exec(r.replayID, r.t, string(r.data))
	}
	stmt.Close()
	tx.Commit()
}

// ReadRange returns every snapshot recorded for replayID, ordered by time.
func (w *Writer) ReadRange(ctx context.Context, replayID string) ([][]byte, error) {
	rows, err := w.db.QueryContext(ctx, `SELECT data FROM node_snapshots WHERE record_replay_id = ? ORDER BY t ASC`, replayID)
	if err != nil {
		return nil, fmt.Errorf("persist/sqlite: query: %w", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		out = append(out, []byte(data))
	}
	return out, rows.Err()
}

// Close flushes any pending writes and closes the database.
func (w *Writer) Close() error {
	close(w.pending)
	<-w.done
	return w.db.Close()
}
