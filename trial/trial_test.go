package trial

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storbench/storbench/stats"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// stepClock returns a clock advancing by step on every call.
func stepClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)

	return func() time.Time {
		t = t.Add(step)

		return t
	}
}

// scriptClock returns a clock replaying the given offsets from epoch.
func scriptClock(offsets []time.Duration) func() time.Time {
	i := 0

	return func() time.Time {
		t := time.Unix(0, 0).Add(offsets[i])
		i++

		return t
	}
}

func TestRunInvocationCount(t *testing.T) {
	r := NewRunner("stub", testLogger())
	r.now = stepClock(2 * time.Millisecond)

	calls := 0
	op := func(context.Context) error {
		calls++

		return nil
	}

	samples, err := r.Run(context.Background(), "point_query", op, 3, 10)
	require.NoError(t, err)

	assert.Equal(t, 13, calls, "warmup + measured invocations")
	require.Len(t, samples, 10)

	for i, s := range samples {
		assert.Equal(t, 2.0, s, "sample %d", i)
	}
}

func TestRunPreservesInvocationOrder(t *testing.T) {
	// Offsets: trial start, then {start, end} per iteration, then the
	// wall-time log read. Gaps of 5ms, 1ms, 3ms.
	offsets := []time.Duration{
		0,
		10 * time.Millisecond, 15 * time.Millisecond,
		20 * time.Millisecond, 21 * time.Millisecond,
		30 * time.Millisecond, 33 * time.Millisecond,
		40 * time.Millisecond,
	}

	r := NewRunner("stub", testLogger())
	r.now = scriptClock(offsets)

	samples, err := r.Run(context.Background(), "range_scan_100",
		func(context.Context) error { return nil }, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 1, 3}, samples)
}

func TestRunMeasuredFailureAborts(t *testing.T) {
	r := NewRunner("stub", testLogger())
	r.now = stepClock(time.Millisecond)

	boom := errors.New("store unreachable")
	calls := 0
	op := func(context.Context) error {
		calls++
		if calls == 4 {
			return boom
		}

		return nil
	}

	samples, err := r.Run(context.Background(), "count_all", op, 0, 10)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, samples, "no partial sample set on abort")
}

func TestRunWarmupFailuresIgnored(t *testing.T) {
	r := NewRunner("stub", testLogger())
	r.now = stepClock(time.Millisecond)

	calls := 0
	op := func(context.Context) error {
		calls++
		if calls <= 3 {
			return errors.New("cold cache")
		}

		return nil
	}

	samples, err := r.Run(context.Background(), "point_query", op, 3, 5)
	require.NoError(t, err)
	assert.Len(t, samples, 5)
	assert.Equal(t, 8, calls)
}

func TestRunValidatesCounts(t *testing.T) {
	r := NewRunner("stub", testLogger())
	op := func(context.Context) error { return nil }

	_, err := r.Run(context.Background(), "x", op, -1, 10)
	require.Error(t, err)

	_, err = r.Run(context.Background(), "x", op, 0, 0)
	require.Error(t, err)
}

// Two identical runs through the full trial -> summarize path must yield
// bit-identical statistics.
func TestRunSummarizeDeterministic(t *testing.T) {
	offsets := []time.Duration{
		0,
		1 * time.Millisecond, 8 * time.Millisecond,
		10 * time.Millisecond, 13 * time.Millisecond,
		20 * time.Millisecond, 22 * time.Millisecond,
		30 * time.Millisecond, 39 * time.Millisecond,
		40 * time.Millisecond, 46 * time.Millisecond,
		50 * time.Millisecond,
	}

	run := func() stats.Summary {
		r := NewRunner("stub", testLogger())
		r.now = scriptClock(offsets)

		samples, err := r.Run(context.Background(), "point_query",
			func(context.Context) error { return nil }, 0, 5)
		require.NoError(t, err)

		summary, err := stats.Summarize(samples)
		require.NoError(t, err)

		return summary
	}

	assert.Equal(t, run(), run())
}
