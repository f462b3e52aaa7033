// Package percentile estimates percentile values over path-score samples.
// Content designers run it over pooled path scores to place badge
// thresholds so that, say, the 90th-percentile playthrough earns gold.
package percentile

import (
	"math"
	"sort"
)

// Estimate returns the interpolated value at each requested percentile.
// Percentiles are expressed on [0,100]; validating the range is the
// caller's job. An empty sample set yields an empty map rather than an
// error, and a single sample answers every percentile with itself.
func Estimate(samples []float64, percentiles []float64) map[float64]float64 {
	out := make(map[float64]float64, len(percentiles))
	if len(samples) == 0 {
		return out
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	n := len(sorted)
	for _, p := range percentiles {
		out[p] = at(sorted, p, n)
	}
	return out
}

// at computes one percentile over an already-sorted sample set using
// linear interpolation between the two nearest ranks.
func at(sorted []float64, p float64, n int) float64 {
	position := p / 100 * float64(n-1)
	lo := int(math.Floor(position))
	hi := int(math.Ceil(position))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(position-float64(lo))
}
