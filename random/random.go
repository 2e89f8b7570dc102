// Package random wraps the pseudo-random source used by the match engine so
// statistical code can be driven by a seeded or scripted generator.
package random

import (
	"math"
	"math/rand/v2"
	"time"
)

// Source is the randomness every probabilistic component draws from.
type Source interface {
	Float64() float64
	IntN(n int) int
	NormFloat64() float64
	Shuffle(n int, swap func(i, j int))
}

// New returns a time-seeded PCG source.
func New() Source {
	return NewSeeded(uint64(time.Now().UnixNano()))
}

// NewSeeded returns a deterministic PCG source.
func NewSeeded(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Bernoulli draws one trial with success probability p.
func Bernoulli(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Uniform returns a float in [min, max).
func Uniform(src Source, min, max float64) float64 {
	return min + src.Float64()*(max-min)
}

// IntRange returns an integer in [min, max], both inclusive.
func IntRange(src Source, min, max int) int {
	if max <= min {
		return min
	}
	return min + src.IntN(max-min+1)
}

// NormalInt samples N(mean, stddev) and rounds to the nearest integer.
func NormalInt(src Source, mean, stddev float64) int {
	return int(math.Round(mean + stddev*src.NormFloat64()))
}

// WeightedIndex picks an index with probability proportional to its weight.
// Non-positive weights are never picked; -1 means nothing could be picked.
func WeightedIndex(src Source, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	target := src.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if target < w {
			return i
		}
		target -= w
	}
	return last
}

// Pick returns a uniformly chosen element of items. items must not be empty.
func Pick[T any](src Source, items []T) T {
	return items[src.IntN(len(items))]
}
