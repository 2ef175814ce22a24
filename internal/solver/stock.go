package solver

import (
	"fmt"

	"github.com/google/uuid"
)

// Stock collaborators for scalar (float64) state domains. The core leaves
// every formula implementer-defined; these are the documented defaults the
// CLI wires when a project does not supply its own.

// ScalarTension measures a float64 state as a one-element vector and scores
// a transition as the summed component-wise difference new minus old.
// Positive scores therefore mean the measurement grew.
type ScalarTension struct{}

// PerceiveTension maps a float64 state to its one-element measurement.
func (ScalarTension) PerceiveTension(state any) (Measurement, error) {
	v, ok := toFloat(state)
	if !ok {
		return nil, fmt.Errorf("scalar tension requires a numeric state, got %T", state)
	}
	return Measurement{v}, nil
}

// EvaluateCoherence returns the summed difference new minus old.
func (ScalarTension) EvaluateCoherence(old, new Measurement) (float64, error) {
	if len(old) != len(new) {
		return 0, fmt.Errorf("measurement lengths differ: %d vs %d", len(old), len(new))
	}
	var score float64
	for i := range new {
		score += new[i] - old[i]
	}
	return score, nil
}

// AdditiveTransition computes current + input for numeric values.
type AdditiveTransition struct{}

// ComputeNext returns the sum of the current state and the input.
func (AdditiveTransition) ComputeNext(current, input any) (any, error) {
	cur, ok := toFloat(current)
	if !ok {
		return nil, fmt.Errorf("additive transition requires a numeric state, got %T", current)
	}
	in, ok := toFloat(input)
	if !ok {
		return nil, fmt.Errorf("additive transition requires a numeric input, got %T", input)
	}
	return cur + in, nil
}

// ScaledTransition computes current + factor*input. A factor of zero leaves
// the state fixed; a factor of one matches AdditiveTransition.
type ScaledTransition struct {
	Factor float64
}

// ComputeNext returns current + Factor*input.
func (t ScaledTransition) ComputeNext(current, input any) (any, error) {
	cur, ok := toFloat(current)
	if !ok {
		return nil, fmt.Errorf("scaled transition requires a numeric state, got %T", current)
	}
	in, ok := toFloat(input)
	if !ok {
		return nil, fmt.Errorf("scaled transition requires a numeric input, got %T", input)
	}
	return cur + t.Factor*in, nil
}

// FingerprintPattern renders the candidate state's type and value as a
// string fingerprint.
type FingerprintPattern struct{}

// ExtractPattern fingerprints the state.
func (FingerprintPattern) ExtractPattern(state any) (any, error) {
	return fmt.Sprintf("%T:%v", state, state), nil
}

// UUIDOperators names each derived operator with a fresh UUID.
type UUIDOperators struct{}

// DeriveOperator returns a new unique identifier.
func (UUIDOperators) DeriveOperator(pattern any) (string, error) {
	return "op-" + uuid.NewString(), nil
}

// CounterOperators names operators op-1, op-2, ... for deterministic runs.
type CounterOperators struct {
	next int
}

// NewCounterOperators returns a generator starting at op-1.
func NewCounterOperators() *CounterOperators {
	return &CounterOperators{}
}

// DeriveOperator returns the next sequential identifier.
func (g *CounterOperators) DeriveOperator(pattern any) (string, error) {
	g.next++
	return fmt.Sprintf("op-%d", g.next), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
