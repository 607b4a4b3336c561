// Package enginelog wires structured logging for the engine: a JSON slog
// handler to stdout with a service name baked in, plus a run identifier
// propagated through context.Context so every log line from a single run
// can be correlated.
package enginelog

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type ctxKey int

const runIDKey ctxKey = iota

// Init installs a JSON handler writing to stdout at the given level and
// sets it as the default logger, returning it for callers that want to
// hold their own reference.
func Init(service string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	return logger
}

// WithRunID attaches a run identifier to ctx, to be picked up by LogAttrs.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID returns the run identifier attached to ctx, or "" if none.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// NewRunID mints a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// LogAttrs returns the slog attributes that should accompany every log
// line within ctx: currently just the run id, when present.
func LogAttrs(ctx context.Context) []any {
	if id := RunID(ctx); id != "" {
		return []any{"run_id", id}
	}
	return nil
}

// NodeError logs a node's captured exception at Warn, with its path
// attached as a structured field (§10: "NodeError capture logs at Warn
// with the node path attached as a structured field").
func NodeError(ctx context.Context, path string, err error) {
	args := append([]any{"path", path, "error", err}, LogAttrs(ctx)...)
	slog.Warn("node evaluation error", args...)
}

// LifecycleEvent logs a node or graph lifecycle transition at Debug.
func LifecycleEvent(ctx context.Context, path, event string) {
	args := append([]any{"path", path, "event", event}, LogAttrs(ctx)...)
	slog.Debug("lifecycle transition", args...)
}

// Info logs an informational line through the run-scoped attributes.
func Info(ctx context.Context, msg string, kv ...any) {
	slog.Info(msg, append(kv, LogAttrs(ctx)...)...)
}

// Warn logs a warning line through the run-scoped attributes.
func Warn(ctx context.Context, msg string, kv ...any) {
	slog.Warn(msg, append(kv, LogAttrs(ctx)...)...)
}
