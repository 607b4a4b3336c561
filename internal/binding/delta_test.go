package binding

import "testing"

func TestComputeSetDelta(t *testing.T) {
	old := []any{1, 2, 3}
	newVals := []any{2, 3, 4}
	d := ComputeSetDelta(old, newVals)
	if len(d.Added) != 1 || d.Added[0] != 4 {
		t.Fatalf("expected added=[4], got %v", d.Added)
	}
	if len(d.Removed) != 1 || d.Removed[0] != 1 {
		t.Fatalf("expected removed=[1], got %v", d.Removed)
	}
}

func TestComputeDictDelta(t *testing.T) {
	old := map[any]any{"a": 1, "b": 2}
	newVals := map[any]any{"a": 1, "b": 3, "c": 4}
	d := ComputeDictDelta(old, newVals)
	if len(d.Added) != 1 || d.Added[0].Key != "c" {
		t.Fatalf("expected added=[c], got %v", d.Added)
	}
	if len(d.Modified) != 1 || d.Modified[0].Key != "b" {
		t.Fatalf("expected modified=[b], got %v", d.Modified)
	}
	if len(d.Removed) != 0 {
		t.Fatalf("expected no removed keys, got %v", d.Removed)
	}
}

func TestComputeFullDeltaTreatsNilAsEmpty(t *testing.T) {
	d := ComputeFullSetDelta(nil, []any{1, 2})
	if len(d.Added) != 2 || len(d.Removed) != 0 {
		t.Fatalf("expected both elements added from nil old side, got %v", d)
	}

	dd := ComputeFullDictDelta(map[any]any{"x": 1}, nil)
	if len(dd.Removed) != 1 || dd.Removed[0].Key != "x" {
		t.Fatalf("expected x removed when new side is nil, got %v", dd.Removed)
	}
}
