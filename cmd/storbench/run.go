package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/storbench/storbench/config"
	"github.com/storbench/storbench/report"
	"github.com/storbench/storbench/results"
	"github.com/storbench/storbench/stats"
	"github.com/storbench/storbench/store"
	"github.com/storbench/storbench/trial"
)

func newRunCmd(logger *slog.Logger, cfgFile *string) *cobra.Command {
	var (
		stores     []string
		iterations int
		warmup     int
		resultsDir string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the read-pattern benchmarks against the configured stores",
		Long: `Run every read-pattern trial sequentially against each reachable store,
persist the results record, and print a comparison report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}

			if iterations > 0 {
				cfg.Iterations = iterations
			}

			if warmup >= 0 {
				cfg.Warmup = warmup
			}

			if resultsDir != "" {
				cfg.ResultsDir = resultsDir
			}

			return runBenchmark(cmd.Context(), logger, cfg, stores, outputJSON)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&stores, "stores", []string{"mongodb", "hbase"},
		"Stores to benchmark")
	flags.IntVar(&iterations, "iterations", 0,
		"Measured repetitions per operation (0 = config value)")
	flags.IntVar(&warmup, "warmup", -1,
		"Warmup repetitions per operation (-1 = config value)")
	flags.StringVar(&resultsDir, "results-dir", "",
		"Directory for persisted results records")
	flags.BoolVar(&outputJSON, "json", false,
		"Output the results record as JSON instead of a report")

	return cmd
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	storeNames []string,
	outputJSON bool,
) error {
	logger.InfoContext(ctx, "starting benchmark",
		slog.Int("iterations", cfg.Iterations),
		slog.Int("warmup", cfg.Warmup),
		slog.Any("stores", storeNames),
	)

	targets := connectStores(ctx, logger, cfg, storeNames)
	if len(targets) == 0 {
		return fmt.Errorf("no stores reachable")
	}

	defer func() {
		for _, t := range targets {
			_ = t.Close(context.Background())
		}
	}()

	datasetRows, err := targets[0].Rows(ctx)
	if err != nil {
		logger.Warn("failed to count dataset rows",
			slog.String("store", targets[0].Name()),
			slog.String("error", err.Error()),
		)

		// -1 marks the count as unknown in the persisted metadata.
		datasetRows = -1
	}

	var entries []results.Entry

	for _, target := range targets {
		runner := trial.NewRunner(target.Name(), logger)

		ops, err := target.Operations(ctx)
		if err != nil {
			logger.Warn("skipping store",
				slog.String("store", target.Name()),
				slog.String("error", err.Error()),
			)

			continue
		}

		for _, op := range ops {
			measured := cfg.Iterations
			if op.Iterations > 0 {
				measured = op.Iterations
			}

			samples, err := runner.Run(ctx, op.Name, op.Run, cfg.Warmup, measured)
			if err != nil {
				// A failed trial drops only its own entry; the
				// remaining pairs still run and get recorded.
				logger.Warn("trial aborted",
					slog.String("store", target.Name()),
					slog.String("operation", op.Name),
					slog.String("error", err.Error()),
				)

				continue
			}

			summary, err := stats.Summarize(samples)
			if err != nil {
				return fmt.Errorf("summarize %s/%s: %w",
					target.Name(), op.Name, err)
			}

			entries = append(entries, results.Entry{
				Store:     target.Name(),
				Operation: op.Name,
				Samples:   len(samples),
				Summary:   summary,
			})
		}
	}

	if len(entries) == 0 {
		return fmt.Errorf("all trials failed; nothing to record")
	}

	rec := results.Assemble(results.Meta{
		Timestamp:     time.Now().UTC(),
		Warmup:        cfg.Warmup,
		Iterations:    cfg.Iterations,
		DatasetRows:   datasetRows,
		FailurePolicy: trial.FailurePolicyAbort,
	}, entries)

	path, err := rec.Save(cfg.ResultsDir)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}

	logger.InfoContext(ctx, "results saved", slog.String("path", path))

	if outputJSON {
		return report.GenerateJSON(os.Stdout, rec)
	}

	return report.Generate(os.Stdout, rec)
}

// connectStores dials each requested store. An unreachable store is
// skipped with a warning; the rest of the run proceeds without it.
func connectStores(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	names []string,
) []store.Store {
	var targets []store.Store

	for _, name := range names {
		target, err := connectStore(ctx, logger, cfg, name)
		if err != nil {
			logger.Warn("store unavailable",
				slog.String("store", name),
				slog.String("error", err.Error()),
			)

			continue
		}

		targets = append(targets, target)
	}

	return targets
}

func connectStore(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	name string,
) (store.Store, error) {
	// Twice the iteration count gives key rotation headroom, matching
	// the loader's key-space sampling.
	sampleSize := cfg.Iterations * 2

	switch name {
	case "mongodb", "mongo":
		return store.ConnectMongo(ctx, store.MongoConfig{
			Host:       cfg.Mongo.Host,
			Port:       cfg.Mongo.Port,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			SampleSize: sampleSize,
		}, logger)

	case "hbase":
		return store.ConnectHBase(store.HBaseConfig{
			Quorum:       cfg.HBase.Quorum,
			Table:        cfg.HBase.Table,
			ColumnFamily: cfg.HBase.ColumnFamily,
			SampleSize:   sampleSize,
		}, logger), nil

	default:
		return nil, fmt.Errorf("unknown store %q (want mongodb or hbase)", name)
	}
}
