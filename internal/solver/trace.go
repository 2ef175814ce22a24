package solver

import (
	"sync"
	"time"
)

// TraceKind distinguishes trace entry types.
type TraceKind string

const (
	// TraceSeed records a seed drawn at the start of a cycle.
	TraceSeed TraceKind = "seed"
	// TraceState records a state committed at the end of a cycle.
	TraceState TraceKind = "state"
)

// TraceEntry is one audit record. Seed entries carry Seed; state entries
// carry State.
type TraceEntry struct {
	Cycle int
	Kind  TraceKind
	Seed  float64
	State any
	At    time.Time
}

// Trace is an append-only sequence of past seeds and states kept for
// auditing. The loop writes it; nothing in the core consumes it.
type Trace struct {
	mu      sync.Mutex
	entries []TraceEntry
}

// NewTrace returns an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

func (t *Trace) appendSeed(cycle int, seed float64, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TraceEntry{Cycle: cycle, Kind: TraceSeed, Seed: seed, At: at})
}

func (t *Trace) appendState(cycle int, state any, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TraceEntry{Cycle: cycle, Kind: TraceState, State: state, At: at})
}

// Len returns the number of recorded entries.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Entries returns a copy of every recorded entry in order.
func (t *Trace) Entries() []TraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Tail returns up to max of the most recent entries.
func (t *Trace) Tail(max int) []TraceEntry {
	if max <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) == 0 {
		return nil
	}
	start := len(t.entries) - max
	if start < 0 {
		start = 0
	}
	out := make([]TraceEntry, len(t.entries)-start)
	copy(out, t.entries[start:])
	return out
}
