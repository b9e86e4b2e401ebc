// Package main provides the CLI entry point for storbench, a MongoDB vs
// HBase read-path benchmarking harness.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "storbench",
		Short: "MongoDB vs HBase read-path benchmarking harness",
		Long: `Storbench loads the same trip dataset into MongoDB and HBase, times a
battery of read patterns sequentially against both, and renders comparative
latency and throughput reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Path to config file (default: ./storbench.yaml)")

	root.AddCommand(newLoadCmd(logger, &cfgFile))
	root.AddCommand(newRunCmd(logger, &cfgFile))
	root.AddCommand(newReportCmd(&cfgFile))

	return root
}
