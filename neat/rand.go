package neat

import (
	"math/rand/v2"
)

// Rand is the random source used by mutation, crossover and reproduction.
// It embeds rand.Source so it can drive gonum's distributions directly.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	rand.Source
	Float64() float64
	NormFloat64() float64
	IntN(n int) int
}

// NewRand returns a deterministic PCG-backed generator for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

var _ Rand = (*rand.Rand)(nil)
