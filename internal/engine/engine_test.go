package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/yourusername/refinery/internal/events"
	"github.com/yourusername/refinery/internal/solver"
)

type flakyTransition struct {
	calls  int
	failAt int
}

func (f *flakyTransition) ComputeNext(current, input any) (any, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return nil, errors.New("transition exploded")
	}
	return solver.AdditiveTransition{}.ComputeNext(current, input)
}

func testCollaborators(failAt int) solver.Collaborators {
	return solver.Collaborators{
		Seeds:      solver.NewCounterSeeds(),
		Tension:    solver.ScalarTension{},
		Transition: &flakyTransition{failAt: failAt},
		Patterns:   solver.FingerprintPattern{},
		Operators:  solver.NewCounterOperators(),
	}
}

func newTestEngine(t *testing.T, failAt int) (*Engine, *Repository) {
	t.Helper()
	repo := NewRepository(t.TempDir())
	eng, err := Start(0.0, testCollaborators(failAt), repo,
		WithClock(func() time.Time { return time.Unix(1000, 0).UTC() }))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return eng, repo
}

func TestStartPersistsInitialSnapshot(t *testing.T) {
	eng, repo := newTestEngine(t, 0)
	if eng.RunID() == "" {
		t.Fatalf("expected run id")
	}
	snap, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.RunID != eng.RunID() || snap.Cycles != 0 || snap.Status != StatusIdle {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.State != 0.0 {
		t.Fatalf("state = %v, want 0", snap.State)
	}
}

func TestRunPersistsEachCycle(t *testing.T) {
	eng, repo := newTestEngine(t, 0)
	results, err := eng.Run([]any{1.0, 2.0, 3.0})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	snap, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Cycles != 3 || snap.State != 6.0 {
		t.Fatalf("snapshot = %+v, want 3 cycles state 6", snap)
	}
	wantFitness := []float64{1, 2, 3}
	if len(snap.Fitness) != 3 {
		t.Fatalf("fitness history = %v", snap.Fitness)
	}
	for i, want := range wantFitness {
		if snap.Fitness[i] != want {
			t.Fatalf("fitness[%d] = %v, want %v", i, snap.Fitness[i], want)
		}
	}
	if len(snap.Operators) != 3 || snap.Operators[0].ID != "op-1" {
		t.Fatalf("operators = %+v", snap.Operators)
	}
}

func TestStepFailurePersistsPreCycleState(t *testing.T) {
	eng, repo := newTestEngine(t, 2)
	if _, err := eng.Step(1.0); err != nil {
		t.Fatalf("cycle 1: %v", err)
	}
	_, err := eng.Step(2.0)
	if err == nil {
		t.Fatalf("expected cycle 2 failure")
	}
	var collabErr *solver.CollaboratorError
	if !errors.As(err, &collabErr) {
		t.Fatalf("error %T is not a CollaboratorError", err)
	}
	snap, loadErr := repo.Load()
	if loadErr != nil {
		t.Fatalf("load: %v", loadErr)
	}
	if snap.Status != StatusFailed || snap.StatusReason == "" {
		t.Fatalf("snapshot status = %+v", snap)
	}
	if snap.Cycles != 1 || snap.State != 1.0 {
		t.Fatalf("snapshot kept partial commit: %+v", snap)
	}
}

func TestResumeRestoresLoop(t *testing.T) {
	eng, repo := newTestEngine(t, 0)
	if _, err := eng.Run([]any{1.0, 2.0}); err != nil {
		t.Fatalf("run: %v", err)
	}
	// A fresh counter generator would restart at op-1 and collide with the
	// restored registry, so resumed runs use uuid operator names.
	collab := testCollaborators(0)
	collab.Operators = solver.UUIDOperators{}
	resumed, err := Resume(collab, repo,
		WithClock(func() time.Time { return time.Unix(2000, 0).UTC() }))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.RunID() != eng.RunID() {
		t.Fatalf("run id changed across resume")
	}
	if resumed.Loop().Cycles() != 2 {
		t.Fatalf("cycles = %d, want 2", resumed.Loop().Cycles())
	}
	if resumed.Loop().Registry().Len() != 2 {
		t.Fatalf("registry size = %d, want 2", resumed.Loop().Registry().Len())
	}
	res, err := resumed.Step(3.0)
	if err != nil {
		t.Fatalf("step after resume: %v", err)
	}
	if res.Cycle != 3 || res.State != 6.0 {
		t.Fatalf("resumed cycle = %+v", res)
	}
	if !res.OperatorRegistered {
		t.Fatalf("expected operator registration on resumed cycle")
	}
	if resumed.Loop().Registry().Len() != 3 {
		t.Fatalf("registry size = %d, want 3", resumed.Loop().Registry().Len())
	}
}

func TestResumeWithoutSnapshotReturnsNotFound(t *testing.T) {
	repo := NewRepository(t.TempDir())
	if _, err := Resume(testCollaborators(0), repo); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("err = %v, want ErrStateNotFound", err)
	}
}

func TestStepPublishesEvents(t *testing.T) {
	repo := NewRepository(t.TempDir())
	router := events.NewRouter()
	eng, err := Start(0.0, testCollaborators(0), repo, WithEvents(router))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	sub := router.Subscribe(eng.RunID())
	defer sub.Close()
	if _, err := eng.Step(1.0); err != nil {
		t.Fatalf("step: %v", err)
	}
	wantTypes := []events.Type{
		events.TypeCycleStarted,
		events.TypeCycleCommitted,
		events.TypeOperatorRegistered,
	}
	for _, want := range wantTypes {
		select {
		case event := <-sub.Events:
			if event.Type != want {
				t.Fatalf("event type = %s, want %s", event.Type, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}
