package engine

import (
	"errors"
	"testing"
	"time"
)

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewRepository(t.TempDir())
	snap := Snapshot{
		RunID:     "run-1",
		Status:    StatusIdle,
		Cycles:    2,
		State:     3.5,
		Fitness:   []float64{1, 2.5},
		Operators: []OperatorRecord{{ID: "op-1", Pattern: "float64:1", Fitness: 1, Cycle: 1}},
		UpdatedAt: time.Unix(500, 0).UTC(),
	}
	if err := repo.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.RunID != "run-1" || loaded.Cycles != 2 || loaded.State != 3.5 {
		t.Fatalf("unexpected snapshot: %+v", loaded)
	}
	if len(loaded.Operators) != 1 || loaded.Operators[0].ID != "op-1" {
		t.Fatalf("operators = %+v", loaded.Operators)
	}
}

func TestRepositoryLoadMissing(t *testing.T) {
	repo := NewRepository(t.TempDir())
	if _, err := repo.Load(); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("err = %v, want ErrStateNotFound", err)
	}
}
