package neat

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

// safeDiv returns num/den, or 0 when den is 0.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// binomialCount draws how many of n independent trials with probability p succeed.
func binomialCount(n int, p float64, src Rand) int {
	switch {
	case n <= 0 || p <= 0:
		return 0
	case p >= 1:
		return n
	}
	return int(distuv.Binomial{N: float64(n), P: p, Src: src}.Rand())
}

// normal draws from N(0, sigma^2).
func normal(sigma float64, src Rand) float64 {
	return distuv.Normal{Mu: 0, Sigma: sigma, Src: src}.Rand()
}

// topIndices returns the indices of the len(values)-drop largest values, in
// ascending index order. values is left untouched.
func topIndices(values []float64, drop int) []int {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	order := make([]int, len(values))
	floats.Argsort(sorted, order)

	keep := append([]int(nil), order[drop:]...)
	sort.Ints(keep)
	return keep
}
