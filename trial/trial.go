// Package trial executes timed benchmark trials: a warmup phase followed by
// a measured phase of sequential operation invocations.
package trial

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// FailurePolicyAbort names the measured-phase failure policy applied by
// Runner: any failed invocation aborts the trial and discards its partial
// sample set. Recorded in the results metadata so consumers know which
// policy produced a run.
const FailurePolicyAbort = "abort"

// Operation performs exactly one unit of work against a store, returning
// once the store has fully completed it. Scan-shaped operations must drain
// their results before returning so elapsed time covers the transfer.
type Operation func(ctx context.Context) error

// Runner times sequential operation invocations for a single store.
// Execution is strictly single-threaded: one invocation runs to completion
// before the next begins.
type Runner struct {
	Store  string
	Logger *slog.Logger

	now func() time.Time
}

// NewRunner creates a Runner for the named store.
func NewRunner(store string, logger *slog.Logger) *Runner {
	return &Runner{
		Store:  store,
		Logger: logger.With(slog.String("store", store)),
		now:    time.Now,
	}
}

// Run invokes op warmup times untimed, then measured times, recording
// wall-clock elapsed milliseconds per invocation.
//
// Warmup failures are ignored; they exist only to let connection pools and
// server caches stabilize. A measured-phase failure aborts the trial and no
// partial sample set is returned (FailurePolicyAbort). On success the
// returned samples hold exactly measured elements, in invocation order.
func (r *Runner) Run(
	ctx context.Context,
	name string,
	op Operation,
	warmup, measured int,
) ([]float64, error) {
	if warmup < 0 {
		return nil, fmt.Errorf("warmup count %d is negative", warmup)
	}

	if measured < 1 {
		return nil, fmt.Errorf("measured count %d must be at least 1", measured)
	}

	r.Logger.Info("starting trial",
		slog.String("operation", name),
		slog.Int("warmup", warmup),
		slog.Int("measured", measured),
	)

	for i := 0; i < warmup; i++ {
		if err := op(ctx); err != nil {
			r.Logger.Debug("warmup invocation failed",
				slog.String("operation", name),
				slog.Int("iteration", i),
				slog.String("error", err.Error()),
			)
		}
	}

	samples := make([]float64, 0, measured)
	trialStart := r.now()

	for i := 0; i < measured; i++ {
		start := r.now()

		if err := op(ctx); err != nil {
			return nil, fmt.Errorf("%s iteration %d: %w", name, i, err)
		}

		elapsed := r.now().Sub(start)
		samples = append(samples, float64(elapsed)/float64(time.Millisecond))
	}

	r.Logger.Info("trial finished",
		slog.String("operation", name),
		slog.Duration("wall_time", r.now().Sub(trialStart)),
	)

	return samples, nil
}
