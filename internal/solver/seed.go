package solver

import "math/rand"

// CounterSeeds yields 0, 1, 2, ... It is the default generator because it
// keeps runs reproducible.
type CounterSeeds struct {
	next float64
}

// NewCounterSeeds returns a counter starting at zero.
func NewCounterSeeds() *CounterSeeds {
	return &CounterSeeds{}
}

// NextSeed returns the next counter value.
func (s *CounterSeeds) NextSeed() (float64, error) {
	v := s.next
	s.next++
	return v, nil
}

// RandomSeeds draws uniform values in [0, 1) from a dedicated
// pseudo-random source so loops do not share generator state.
type RandomSeeds struct {
	rng *rand.Rand
}

// NewRandomSeeds builds a generator seeded with the provided value.
func NewRandomSeeds(seed int64) *RandomSeeds {
	return &RandomSeeds{rng: rand.New(rand.NewSource(seed))}
}

// NextSeed returns the next pseudo-random value.
func (s *RandomSeeds) NextSeed() (float64, error) {
	return s.rng.Float64(), nil
}
