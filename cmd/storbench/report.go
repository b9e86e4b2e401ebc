package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/storbench/storbench/config"
	"github.com/storbench/storbench/report"
	"github.com/storbench/storbench/results"
)

func newReportCmd(cfgFile *string) *cobra.Command {
	var (
		file       string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a report from a saved results record",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}

			var rec *results.Record
			if file != "" {
				rec, err = results.Load(file)
			} else {
				rec, err = results.Latest(cfg.ResultsDir)
			}

			if err != nil {
				return err
			}

			if outputJSON {
				return report.GenerateJSON(os.Stdout, rec)
			}

			return report.Generate(os.Stdout, rec)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&file, "file", "",
		"Results record to render (default: latest in the results dir)")
	flags.BoolVar(&outputJSON, "json", false,
		"Output the record as JSON instead of a report")

	return cmd
}
