// Package report formats benchmark run records into comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/storbench/storbench/results"
)

// metric is one compared row of the per-operation table.
type metric struct {
	label  string
	format string
	value  func(e results.Entry) float64
	higher bool // higher wins (throughput); otherwise lower wins
}

var metrics = []metric{
	{"p50 (ms)", "%.3f", func(e results.Entry) float64 { return e.P50 }, false},
	{"p95 (ms)", "%.3f", func(e results.Entry) float64 { return e.P95 }, false},
	{"p99 (ms)", "%.3f", func(e results.Entry) float64 { return e.P99 }, false},
	{"mean (ms)", "%.3f", func(e results.Entry) float64 { return e.Mean }, false},
	{"throughput (ops/s)", "%.2f", func(e results.Entry) float64 { return e.Throughput }, true},
}

// Generate writes a markdown comparison report for the given run.
func Generate(w io.Writer, rec *results.Record) error {
	if rec == nil || len(rec.Entries) == 0 {
		return fmt.Errorf("no results to report")
	}

	stores := storeNames(rec)

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)
	rows := "unknown"
	if rec.DatasetRows >= 0 {
		rows = strconv.Itoa(rec.DatasetRows)
	}

	fmt.Fprintf(w, "Run %s | iterations: %d | warmup: %d | dataset rows: %s "+
		"| failure policy: %s\n",
		rec.Timestamp.Format(time.RFC3339),
		rec.Iterations,
		rec.Warmup,
		rows,
		rec.FailurePolicy,
	)

	for _, op := range operationNames(rec) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "### %s\n", title(op))
		fmt.Fprintln(w)

		header := append([]string{"Metric"}, stores...)
		header = append(header, "Winner", "Diff")
		fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
		fmt.Fprintf(w, "|%s\n", strings.Repeat("--------|", len(header)))

		for _, m := range metrics {
			cells := make([]string, 0, len(header))
			cells = append(cells, m.label)

			values := make([]float64, len(stores))

			for i, s := range stores {
				e, ok := rec.Lookup(s, op)
				if !ok {
					values[i] = math.NaN()
					cells = append(cells, "-")

					continue
				}

				values[i] = m.value(e)
				cells = append(cells, fmt.Sprintf(m.format, values[i]))
			}

			winner, diff := compare(stores, values, m.higher)
			cells = append(cells, winner, diff)
			fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
		}
	}

	return nil
}

// GenerateJSON writes the run record as indented JSON.
func GenerateJSON(w io.Writer, rec *results.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(rec)
}

// compare names the winning store and the relative difference for one
// metric row. Comparison needs exactly two stores with values; latency
// diffs are negative ("that much less"), throughput diffs positive.
func compare(stores []string, values []float64, higher bool) (string, string) {
	type scored struct {
		store string
		value float64
	}

	var present []scored

	for i, v := range values {
		if !math.IsNaN(v) {
			present = append(present, scored{stores[i], v})
		}
	}

	if len(present) != 2 {
		return "-", "-"
	}

	a, b := present[0], present[1]
	if a.value == b.value {
		return "tie", "0%"
	}

	winner, loser := a, b
	if (higher && b.value > a.value) || (!higher && b.value < a.value) {
		winner, loser = b, a
	}

	if higher {
		return winner.store,
			fmt.Sprintf("+%.1f%%", (winner.value-loser.value)/loser.value*100)
	}

	return winner.store,
		fmt.Sprintf("-%.1f%%", (loser.value-winner.value)/loser.value*100)
}

func storeNames(rec *results.Record) []string {
	var names []string
	seen := make(map[string]bool)

	for _, e := range rec.Entries {
		if !seen[e.Store] {
			seen[e.Store] = true
			names = append(names, e.Store)
		}
	}

	return names
}

func operationNames(rec *results.Record) []string {
	var names []string
	seen := make(map[string]bool)

	for _, e := range rec.Entries {
		if !seen[e.Operation] {
			seen[e.Operation] = true
			names = append(names, e.Operation)
		}
	}

	return names
}

func title(op string) string {
	words := strings.Split(op, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}

	return strings.Join(words, " ")
}
