package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/storbench/storbench/config"
	"github.com/storbench/storbench/dataset"
)

func newLoadCmd(logger *slog.Logger, cfgFile *string) *cobra.Command {
	var (
		storeName string
		dataDir   string
		batchSize int
		synthetic int
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the trip dataset into a store",
		Long: `Read the parquet dataset (or generate a synthetic one) and bulk-load it
into the target store, replacing any previous contents.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}

			if dataDir != "" {
				cfg.DataDir = dataDir
			}

			if batchSize > 0 {
				cfg.BatchSize = batchSize
			}

			return runLoad(cmd.Context(), logger, cfg, storeName, synthetic, seed)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&storeName, "store", "",
		"Target store: mongodb or hbase (required)")
	flags.StringVar(&dataDir, "data-dir", "",
		"Directory holding the parquet dataset")
	flags.IntVar(&batchSize, "batch-size", 0,
		"Records per insert batch (0 = config value)")
	flags.IntVar(&synthetic, "synthetic", 0,
		"Generate N synthetic records instead of reading the data dir")
	flags.Int64Var(&seed, "seed", 1,
		"Seed for synthetic generation")

	_ = cmd.MarkFlagRequired("store")

	return cmd
}

func runLoad(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	storeName string,
	synthetic int,
	seed int64,
) error {
	var (
		records []dataset.Record
		err     error
	)

	if synthetic > 0 {
		records = dataset.NewGenerator(dataset.Config{
			Rows: synthetic,
			Seed: seed,
		}).Generate()
	} else {
		records, err = dataset.ReadDir(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("read dataset: %w", err)
		}
	}

	logger.InfoContext(ctx, "dataset ready", slog.Int("records", len(records)))

	target, err := connectStore(ctx, logger, cfg, storeName)
	if err != nil {
		return err
	}

	defer func() { _ = target.Close(context.Background()) }()

	summary, err := target.Load(ctx, records, cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("load %s: %w", target.Name(), err)
	}

	logger.InfoContext(ctx, "load complete",
		slog.String("store", target.Name()),
		slog.Int("records", summary.Records),
		slog.Duration("elapsed", summary.Elapsed),
		slog.Float64("records_per_sec", summary.Throughput()),
	)

	return nil
}
