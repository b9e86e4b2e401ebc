package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeLiteral(t *testing.T) {
	s, err := Summarize([]float64{1.0, 2.0, 3.0, 4.0, 5.0})
	require.NoError(t, err)

	assert.Equal(t, 3.0, s.P50)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, 3.0, s.Mean)
	assert.InDelta(t, 1.4142, s.Stddev, 0.0001)

	// rank 3.8 and 3.96 between the 4th and 5th samples.
	assert.InDelta(t, 4.8, s.P95, 1e-9)
	assert.InDelta(t, 4.96, s.P99, 1e-9)
}

func TestSummarizeThroughput(t *testing.T) {
	// 5 repetitions totalling 10ms: 5 / 0.010s = 500 ops/sec exactly.
	s, err := Summarize([]float64{2.0, 2.0, 2.0, 2.0, 2.0})
	require.NoError(t, err)
	assert.Equal(t, 500.0, s.Throughput)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil)
	require.ErrorIs(t, err, ErrEmptyInput)

	_, err = Summarize([]float64{})
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestSummarizeSingleSample(t *testing.T) {
	s, err := Summarize([]float64{4.2})
	require.NoError(t, err)

	assert.Equal(t, 4.2, s.P50)
	assert.Equal(t, 4.2, s.P95)
	assert.Equal(t, 4.2, s.P99)
	assert.Equal(t, 4.2, s.Min)
	assert.Equal(t, 4.2, s.Max)
	assert.Equal(t, 4.2, s.Mean)
	assert.Equal(t, 0.0, s.Stddev)
}

func TestSummarizeOrderingInvariants(t *testing.T) {
	samples := []float64{12.5, 0.3, 7.1, 7.1, 99.0, 4.4, 18.2, 0.9, 3.3, 61.7}

	s, err := Summarize(samples)
	require.NoError(t, err)

	assert.LessOrEqual(t, s.Min, s.P50)
	assert.LessOrEqual(t, s.P50, s.P95)
	assert.LessOrEqual(t, s.P95, s.P99)
	assert.LessOrEqual(t, s.P99, s.Max)
	assert.GreaterOrEqual(t, s.Mean, s.Min)
	assert.LessOrEqual(t, s.Mean, s.Max)
}

func TestSummarizeDoesNotMutateInput(t *testing.T) {
	samples := []float64{5.0, 1.0, 3.0}

	_, err := Summarize(samples)
	require.NoError(t, err)
	assert.Equal(t, []float64{5.0, 1.0, 3.0}, samples)
}

func TestSummarizeDeterministic(t *testing.T) {
	samples := []float64{3.7, 1.1, 8.8, 2.2, 5.5, 13.13, 0.01}

	first, err := Summarize(samples)
	require.NoError(t, err)
	second, err := Summarize(samples)
	require.NoError(t, err)

	// Bit-identical, not just approximately equal.
	assert.Equal(t, first, second)
}

func TestPercentileInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	tests := []struct {
		pct  float64
		want float64
	}{
		{0, 10},
		{50, 25},
		{75, 32.5},
		{100, 40},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, percentile(sorted, tt.pct), 1e-9,
			"p%v", tt.pct)
	}
}
