package engconfig

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()
	cfg := Load()
	if cfg.Mode != ModeSim {
		t.Fatalf("expected default mode sim, got %v", cfg.Mode)
	}
	if cfg.PersistBackend != PersistNone {
		t.Fatalf("expected default persist backend none, got %v", cfg.PersistBackend)
	}
	if cfg.GraphQueueCapacity != 1024 {
		t.Fatalf("expected default queue capacity 1024, got %d", cfg.GraphQueueCapacity)
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("ENGINE_MODE", "realtime")
	os.Setenv("PERSIST_BACKEND", "redis")
	os.Setenv("GRAPH_QUEUE_CAPACITY", "64")
	defer os.Clearenv()

	cfg := Load()
	if cfg.Mode != ModeRealtime {
		t.Fatalf("expected realtime mode, got %v", cfg.Mode)
	}
	if cfg.PersistBackend != PersistRedis {
		t.Fatalf("expected redis backend, got %v", cfg.PersistBackend)
	}
	if cfg.GraphQueueCapacity != 64 {
		t.Fatalf("expected queue capacity 64, got %d", cfg.GraphQueueCapacity)
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRAPH_QUEUE_CAPACITY", "not-a-number")
	defer os.Clearenv()

	cfg := Load()
	if cfg.GraphQueueCapacity != 1024 {
		t.Fatalf("expected fallback to default on invalid int, got %d", cfg.GraphQueueCapacity)
	}
}
