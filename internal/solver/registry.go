package solver

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Operator records one derived heuristic. The payload keeps the pattern and
// the fitness score that gated its creation.
type Operator struct {
	ID        string
	Pattern   any
	Fitness   float64
	Cycle     int
	CreatedAt time.Time
}

// Registry maps operator identifiers to derived operators. Entries are only
// ever added; no deletion or mutation path exists.
type Registry struct {
	mu    sync.RWMutex
	ops   map[string]Operator
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: map[string]Operator{}}
}

// Add inserts an operator. Reusing an existing identifier is an error.
func (r *Registry) Add(op Operator) error {
	if op.ID == "" {
		return fmt.Errorf("solver: operator id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ops[op.ID]; exists {
		return fmt.Errorf("solver: operator %s already registered", op.ID)
	}
	r.ops[op.ID] = op
	r.order = append(r.order, op.ID)
	return nil
}

// Get looks up an operator by identifier.
func (r *Registry) Get(id string) (Operator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[id]
	return op, ok
}

// Len returns how many operators have been registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ops)
}

// IDs returns a sorted list of registered operator identifiers.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.ops))
	for id := range r.ops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Operators returns a snapshot of all operators in insertion order.
func (r *Registry) Operators() []Operator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Operator, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.ops[id])
	}
	return out
}
