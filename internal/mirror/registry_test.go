package mirror

import (
	"errors"
	"testing"
)

func TestRegistrySnapshotSorted(t *testing.T) {
	registry := NewRegistry()
	registry.setPhase("db2", PhaseTailing)
	registry.setPhase("db1", PhaseHistorical)
	registry.setError("db1", errors.New("throttled"))

	snap := registry.Snapshot()
	if len(snap) != 2 || snap[0].Instance != "db1" || snap[1].Instance != "db2" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap[0].LastError != "throttled" || snap[0].UpdatedAt.IsZero() {
		t.Fatalf("unexpected db1 entry: %+v", snap[0])
	}

	registry.setError("db1", nil)
	if status, _ := registry.Get("db1"); status.LastError != "" {
		t.Fatalf("error not cleared: %q", status.LastError)
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var registry *Registry
	registry.setPhase("db1", PhaseTailing)
	if _, ok := registry.Get("db1"); ok {
		t.Fatal("nil registry returned an entry")
	}
	if snap := registry.Snapshot(); snap != nil {
		t.Fatalf("nil registry snapshot = %v", snap)
	}
}
