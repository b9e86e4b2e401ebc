// Package stats computes descriptive statistics over trial latency samples.
package stats

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptyInput is returned by Summarize when given no samples.
var ErrEmptyInput = errors.New("stats: empty sample set")

// Summary holds the derived statistics for one {store, operation} trial.
// Latency fields are milliseconds; Throughput is operations per second.
type Summary struct {
	P50        float64 `json:"p50_ms"`
	P95        float64 `json:"p95_ms"`
	P99        float64 `json:"p99_ms"`
	Mean       float64 `json:"mean_ms"`
	Stddev     float64 `json:"std_ms"`
	Min        float64 `json:"min_ms"`
	Max        float64 `json:"max_ms"`
	Throughput float64 `json:"throughput_ops"`
}

// Summarize computes a Summary over per-repetition latencies in
// milliseconds. The input is read only, never mutated.
//
// Percentiles interpolate linearly between the two nearest ranks of the
// sorted samples. Stddev is the population standard deviation. Throughput
// is total repetitions over total wall-clock time, which characterizes the
// sequential single-threaded execution rate; with high variance this is not
// the same as 1/mean.
func Summarize(samples []float64) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, ErrEmptyInput
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	n := float64(len(sorted))
	mean := sum / n

	var sqDiff float64
	for _, v := range sorted {
		d := v - mean
		sqDiff += d * d
	}

	var throughput float64
	if sum > 0 {
		throughput = n * 1000 / sum
	}

	return Summary{
		P50:        percentile(sorted, 50),
		P95:        percentile(sorted, 95),
		P99:        percentile(sorted, 99),
		Mean:       mean,
		Stddev:     math.Sqrt(sqDiff / n),
		Min:        sorted[0],
		Max:        sorted[len(sorted)-1],
		Throughput: throughput,
	}, nil
}

// percentile returns the pct-th percentile of the sorted samples, linearly
// interpolating between the floor and ceiling ranks.
func percentile(sorted []float64, pct float64) float64 {
	rank := pct / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}

	frac := rank - float64(lower)

	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
