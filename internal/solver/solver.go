// Package solver implements an iterative state-refinement loop with
// pluggable collaborator roles. The loop owns an opaque state value and,
// on each cycle, computes a candidate successor, scores the transition,
// and conditionally registers a derived operator before committing.
package solver

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Measurement is a numeric reading of a state. Scalar measurements are
// vectors of length one.
type Measurement []float64

// SeedGenerator yields a lazy, infinite sequence of values. Generators may
// hold internal state; the sequence is not restartable.
type SeedGenerator interface {
	NextSeed() (float64, error)
}

// TensionEvaluator maps states to measurements and combines two
// measurements into a scalar fitness score. Implementations must be pure:
// the loop's behavior is fully determined by its explicit inputs.
type TensionEvaluator interface {
	PerceiveTension(state any) (Measurement, error)
	EvaluateCoherence(old, new Measurement) (float64, error)
}

// StateTransition produces a successor state from the current state and an
// external input. Implementations must be pure.
type StateTransition interface {
	ComputeNext(current, input any) (any, error)
}

// PatternExtractor derives a pattern from a candidate state. The pattern is
// handed to the OperatorGenerator when a cycle scores positive.
type PatternExtractor interface {
	ExtractPattern(state any) (any, error)
}

// OperatorGenerator names a new operator for a pattern. The returned
// identifier must not already exist in the loop's registry.
type OperatorGenerator interface {
	DeriveOperator(pattern any) (string, error)
}

// Collaborators bundles the five pluggable roles a Loop requires.
type Collaborators struct {
	Seeds      SeedGenerator
	Tension    TensionEvaluator
	Transition StateTransition
	Patterns   PatternExtractor
	Operators  OperatorGenerator
}

// Validate ensures every role is bound.
func (c Collaborators) Validate() error {
	if c.Seeds == nil {
		return fmt.Errorf("solver: %s collaborator is required", roleSeeds)
	}
	if c.Tension == nil {
		return fmt.Errorf("solver: %s collaborator is required", roleTension)
	}
	if c.Transition == nil {
		return fmt.Errorf("solver: %s collaborator is required", roleTransition)
	}
	if c.Patterns == nil {
		return fmt.Errorf("solver: %s collaborator is required", rolePatterns)
	}
	if c.Operators == nil {
		return fmt.Errorf("solver: %s collaborator is required", roleOperators)
	}
	return nil
}

// CycleResult reports the outcome of one committed cycle.
type CycleResult struct {
	Cycle              int
	Seed               float64
	State              any
	Fitness            float64
	OperatorID         string
	OperatorRegistered bool
}

// Loop drives the refinement cycle. A Loop exclusively owns its state,
// registry, and trace between cycles. Instances are not safe for
// concurrent use; give each logical solver its own Loop.
type Loop struct {
	state    any
	collab   Collaborators
	registry *Registry
	trace    *Trace
	cycles   int
	now      func() time.Time

	historyErr error
}

// Option customizes a Loop during construction.
type Option func(*Loop)

// WithClock overrides the clock used for registry and trace timestamps.
func WithClock(clock func() time.Time) Option {
	return func(l *Loop) {
		if clock != nil {
			l.now = clock
		}
	}
}

// WithHistory primes a resumed loop with a prior cycle count and registry
// contents. Operators that fail to re-register surface as an error from New.
func WithHistory(cycles int, operators []Operator) Option {
	return func(l *Loop) {
		if cycles > 0 {
			l.cycles = cycles
		}
		for _, op := range operators {
			if err := l.registry.Add(op); err != nil {
				l.historyErr = err
				return
			}
		}
	}
}

// New builds a loop around an initial state and a full collaborator set.
func New(initial any, collab Collaborators, opts ...Option) (*Loop, error) {
	if err := collab.Validate(); err != nil {
		return nil, err
	}
	loop := &Loop{
		state:    initial,
		collab:   collab,
		registry: NewRegistry(),
		trace:    NewTrace(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(loop)
	}
	if loop.historyErr != nil {
		return nil, fmt.Errorf("solver: restore history: %w", loop.historyErr)
	}
	return loop, nil
}

// State returns the current committed state.
func (l *Loop) State() any { return l.state }

// Cycles returns how many cycles have committed.
func (l *Loop) Cycles() int { return l.cycles }

// Registry exposes the loop's operator registry.
func (l *Loop) Registry() *Registry { return l.registry }

// Trace exposes the loop's audit trace.
func (l *Loop) Trace() *Trace { return l.trace }

// RunCycle executes one refinement cycle: draw a seed, compute a candidate
// successor, score the old state against the new one, register a derived
// operator when the score is strictly positive, then commit. The commit is
// the last step; a failing collaborator aborts the cycle with the state
// unchanged and surfaces as a *CollaboratorError.
func (l *Loop) RunCycle(input any) (CycleResult, error) {
	current := l.state
	cycle := l.cycles + 1

	// The seed feeds the audit trace only; nothing downstream consumes it.
	seed, err := l.collab.Seeds.NextSeed()
	if err != nil {
		return CycleResult{}, failRole(roleSeeds, err)
	}
	l.trace.appendSeed(cycle, seed, l.now())

	next, err := l.collab.Transition.ComputeNext(current, input)
	if err != nil {
		return CycleResult{}, failRole(roleTransition, err)
	}

	oldTension, err := l.collab.Tension.PerceiveTension(current)
	if err != nil {
		return CycleResult{}, failRole(roleTension, err)
	}
	newTension, err := l.collab.Tension.PerceiveTension(next)
	if err != nil {
		return CycleResult{}, failRole(roleTension, err)
	}
	fitness, err := l.collab.Tension.EvaluateCoherence(oldTension, newTension)
	if err != nil {
		return CycleResult{}, failRole(roleTension, err)
	}
	if math.IsNaN(fitness) {
		return CycleResult{}, failRole(roleTension, fmt.Errorf("coherence score is NaN"))
	}

	result := CycleResult{Cycle: cycle, Seed: seed, State: next, Fitness: fitness}

	// A score of exactly zero does not trigger operator generation.
	if fitness > 0 {
		pattern, err := l.collab.Patterns.ExtractPattern(next)
		if err != nil {
			return CycleResult{}, failRole(rolePatterns, err)
		}
		id, err := l.collab.Operators.DeriveOperator(pattern)
		if err != nil {
			return CycleResult{}, failRole(roleOperators, err)
		}
		if strings.TrimSpace(id) == "" {
			return CycleResult{}, failRole(roleOperators, fmt.Errorf("derived identifier is empty"))
		}
		op := Operator{ID: id, Pattern: pattern, Fitness: fitness, Cycle: cycle, CreatedAt: l.now()}
		if err := l.registry.Add(op); err != nil {
			return CycleResult{}, failRole(roleOperators, err)
		}
		result.OperatorID = id
		result.OperatorRegistered = true
	}

	l.state = next
	l.cycles = cycle
	l.trace.appendState(cycle, next, l.now())
	return result, nil
}
