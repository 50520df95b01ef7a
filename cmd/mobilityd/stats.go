package main

import (
	"math"
	"sort"
)

// percentile returns the p-th percentile (0-100) of arr using linear
// interpolation between closest ranks, used here to summarize the daily
// distance values of an aggregation run for operational logging.
func percentile(arr []float64, p float64) float64 {
	if len(arr) == 0 {
		return 0
	}
	sorted := make([]float64, len(arr))
	copy(sorted, arr)
	sort.Float64s(sorted)
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	return sorted[lower] + (sorted[upper]-sorted[lower])*(idx-float64(lower))
}
