// Package store wires the benchmark's database clients: bulk-loading the
// trip dataset and exposing each store's timed read operations.
package store

import (
	"context"
	"time"

	"github.com/storbench/storbench/dataset"
	"github.com/storbench/storbench/trial"
)

// Operation is a named benchmark callable bound to one store connection and
// its key space. Iterations overrides the run's default measured count when
// non-zero; expensive scans use fewer repetitions.
type Operation struct {
	Name       string
	Iterations int
	Run        trial.Operation
}

// LoadSummary reports the outcome of a bulk dataset load.
type LoadSummary struct {
	Records int
	Elapsed time.Duration
}

// Throughput returns loaded records per second.
func (s LoadSummary) Throughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}

	return float64(s.Records) / s.Elapsed.Seconds()
}

// Store is one benchmark target. Implementations hold exactly one
// connection, used by a single trial runner at a time; none of the methods
// are safe for concurrent use.
type Store interface {
	Name() string

	// Load replaces the store's contents with the given records,
	// writing in batches of batchSize.
	Load(ctx context.Context, records []dataset.Record, batchSize int) (LoadSummary, error)

	// Rows reports how many records the store currently holds.
	Rows(ctx context.Context) (int, error)

	// Operations samples the key space and returns the read-pattern
	// callables for this store. Scan operations fully materialize their
	// results before returning.
	Operations(ctx context.Context) ([]Operation, error)

	Close(ctx context.Context) error
}
