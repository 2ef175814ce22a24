// Package engine drives a solver loop across process restarts: it persists
// a snapshot after every cycle, journals progress, and publishes run
// events.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/refinery/internal/events"
	"github.com/yourusername/refinery/internal/journal"
	"github.com/yourusername/refinery/internal/solver"
)

// Status enumerates coarse persisted run phases.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusFailed Status = "failed"
)

// OperatorRecord is the JSON-safe form of a registry operator. Patterns are
// stringified for persistence.
type OperatorRecord struct {
	ID        string    `json:"id"`
	Pattern   string    `json:"pattern,omitempty"`
	Fitness   float64   `json:"fitness"`
	Cycle     int       `json:"cycle"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot captures the persisted view of a run. The committed state must
// round-trip JSON; the built-in scalar collaborators satisfy this.
type Snapshot struct {
	RunID        string           `json:"run_id"`
	Status       Status           `json:"status"`
	StatusReason string           `json:"status_reason,omitempty"`
	Cycles       int              `json:"cycles"`
	State        any              `json:"state"`
	Fitness      []float64        `json:"fitness,omitempty"`
	Operators    []OperatorRecord `json:"operators,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Engine couples a loop with persistence and observability.
type Engine struct {
	loop    *solver.Loop
	store   StateStore
	journal *journal.Journal
	router  *events.Router
	runID   string
	fitness []float64
	clock   func() time.Time
}

// Option customizes the engine instance.
type Option func(*Engine)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithJournal attaches a cycle journal.
func WithJournal(book *journal.Journal) Option {
	return func(e *Engine) {
		e.journal = book
	}
}

// WithEvents attaches an event router.
func WithEvents(router *events.Router) Option {
	return func(e *Engine) {
		e.router = router
	}
}

// Start creates a fresh run around the initial state and persists its first
// snapshot.
func Start(initial any, collab solver.Collaborators, store StateStore, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("engine: state store is required")
	}
	eng := &Engine{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(eng)
	}
	loop, err := solver.New(initial, collab, solver.WithClock(eng.clock))
	if err != nil {
		return nil, err
	}
	eng.loop = loop
	eng.runID = generateRunID(eng.clock())
	if err := store.Save(eng.snapshot(StatusIdle, "")); err != nil {
		return nil, fmt.Errorf("engine: persist initial snapshot: %w", err)
	}
	eng.journal.Info("run %s started", eng.runID)
	return eng, nil
}

// Resume rebuilds an engine from the persisted snapshot, restoring the
// loop's cycle count and registry contents.
func Resume(collab solver.Collaborators, store StateStore, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("engine: state store is required")
	}
	snap, err := store.Load()
	if err != nil {
		return nil, err
	}
	eng := &Engine{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(eng)
	}
	restored := make([]solver.Operator, 0, len(snap.Operators))
	for _, rec := range snap.Operators {
		restored = append(restored, solver.Operator{
			ID:        rec.ID,
			Pattern:   rec.Pattern,
			Fitness:   rec.Fitness,
			Cycle:     rec.Cycle,
			CreatedAt: rec.CreatedAt,
		})
	}
	loop, err := solver.New(snap.State, collab,
		solver.WithClock(eng.clock),
		solver.WithHistory(snap.Cycles, restored),
	)
	if err != nil {
		return nil, err
	}
	eng.loop = loop
	eng.runID = snap.RunID
	eng.fitness = append(eng.fitness, snap.Fitness...)
	eng.journal.Info("run %s resumed at cycle %d", eng.runID, snap.Cycles)
	return eng, nil
}

// RunID returns the persisted run identifier.
func (e *Engine) RunID() string { return e.runID }

// Loop exposes the underlying solver loop.
func (e *Engine) Loop() *solver.Loop { return e.loop }

// Step executes one cycle, persists the outcome, and publishes events. On
// failure the persisted snapshot keeps the pre-cycle state with a failed
// status, and the error is returned unwrapped from the loop.
func (e *Engine) Step(input any) (solver.CycleResult, error) {
	cycle := e.loop.Cycles() + 1
	e.publish(events.Event{Type: events.TypeCycleStarted, Cycle: cycle})
	res, err := e.loop.RunCycle(input)
	if err != nil {
		e.journal.Error("cycle %d failed: %v", cycle, err)
		e.publish(events.Event{Type: events.TypeCycleFailed, Cycle: cycle, Reason: err.Error()})
		if saveErr := e.store.Save(e.snapshot(StatusFailed, err.Error())); saveErr != nil {
			e.journal.Error("persist failed snapshot: %v", saveErr)
		}
		return solver.CycleResult{}, err
	}
	e.fitness = append(e.fitness, res.Fitness)
	e.journal.Info("cycle %d committed state=%v fitness=%v", res.Cycle, res.State, res.Fitness)
	e.publish(events.Event{
		Type:    events.TypeCycleCommitted,
		Cycle:   res.Cycle,
		Seed:    res.Seed,
		Fitness: res.Fitness,
		State:   res.State,
	})
	if res.OperatorRegistered {
		e.journal.Info("cycle %d registered operator %s", res.Cycle, res.OperatorID)
		e.publish(events.Event{
			Type:       events.TypeOperatorRegistered,
			Cycle:      res.Cycle,
			Fitness:    res.Fitness,
			OperatorID: res.OperatorID,
		})
	}
	if err := e.store.Save(e.snapshot(StatusIdle, "")); err != nil {
		return res, fmt.Errorf("engine: persist snapshot: %w", err)
	}
	return res, nil
}

// Run steps through the inputs in order, stopping at the first failure.
func (e *Engine) Run(inputs []any) ([]solver.CycleResult, error) {
	results := make([]solver.CycleResult, 0, len(inputs))
	for _, input := range inputs {
		res, err := e.Step(input)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) snapshot(status Status, reason string) Snapshot {
	ops := e.loop.Registry().Operators()
	records := make([]OperatorRecord, 0, len(ops))
	for _, op := range ops {
		records = append(records, OperatorRecord{
			ID:        op.ID,
			Pattern:   fmt.Sprint(op.Pattern),
			Fitness:   op.Fitness,
			Cycle:     op.Cycle,
			CreatedAt: op.CreatedAt,
		})
	}
	fitness := make([]float64, len(e.fitness))
	copy(fitness, e.fitness)
	return Snapshot{
		RunID:        e.runID,
		Status:       status,
		StatusReason: reason,
		Cycles:       e.loop.Cycles(),
		State:        e.loop.State(),
		Fitness:      fitness,
		Operators:    records,
		UpdatedAt:    e.clock(),
	}
}

func (e *Engine) publish(event events.Event) {
	if e.router == nil {
		return
	}
	event.EventID = uuid.NewString()
	event.RunID = e.runID
	event.At = e.clock()
	e.router.Route(event)
}

func generateRunID(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("run-%d-%s", now.UnixNano(), suffix)
}
