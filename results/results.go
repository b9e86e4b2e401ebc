// Package results assembles and persists the record of one benchmark run.
package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/storbench/storbench/stats"
)

// SchemaVersion identifies the persisted record layout. Bumped on any
// incompatible change so older readers reject newer files explicitly
// instead of misparsing them.
const SchemaVersion = 1

// Meta describes the run configuration shared by every entry. A
// DatasetRows of -1 means the row count could not be determined.
type Meta struct {
	Timestamp     time.Time `json:"timestamp"`
	Warmup        int       `json:"warmup_iterations"`
	Iterations    int       `json:"num_iterations"`
	DatasetRows   int       `json:"dataset_rows"`
	FailurePolicy string    `json:"failure_policy"`
}

// Entry is the persisted result for one {store, operation} pair. Samples
// is the raw sample count the summary was computed from.
type Entry struct {
	Store     string `json:"store"`
	Operation string `json:"operation"`
	Samples   int    `json:"samples"`
	stats.Summary
}

// Record is one full benchmark run. Never mutated after assembly.
type Record struct {
	SchemaVersion int `json:"schema_version"`
	Meta
	Entries []Entry `json:"results"`
}

// Assemble builds a Record from run metadata and the collected entries.
func Assemble(meta Meta, entries []Entry) *Record {
	return &Record{
		SchemaVersion: SchemaVersion,
		Meta:          meta,
		Entries:       entries,
	}
}

// Lookup returns the entry for the given store and operation names, keyed
// exactly as configured.
func (r *Record) Lookup(store, operation string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Store == store && e.Operation == operation {
			return e, true
		}
	}

	return Entry{}, false
}

// Save writes the record under dir as benchmark_<timestamp>.json plus a
// sibling CSV, returning the JSON path.
func (r *Record) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir %s: %w", dir, err)
	}

	stamp := r.Timestamp.Format("20060102_150405")
	jsonPath := filepath.Join(dir, "benchmark_"+stamp+".json")

	f, err := os.Create(jsonPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", jsonPath, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(r); err != nil {
		f.Close()

		return "", fmt.Errorf("encode record: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", jsonPath, err)
	}

	csvPath := filepath.Join(dir, "benchmark_"+stamp+".csv")
	if err := r.writeCSV(csvPath); err != nil {
		return "", err
	}

	return jsonPath, nil
}

func (r *Record) writeCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)

	rows := [][]string{{
		"store", "operation", "samples",
		"p50_ms", "p95_ms", "p99_ms", "mean_ms", "std_ms",
		"min_ms", "max_ms", "throughput_ops",
	}}

	for _, e := range r.Entries {
		rows = append(rows, []string{
			e.Store,
			e.Operation,
			strconv.Itoa(e.Samples),
			formatFloat(e.P50),
			formatFloat(e.P95),
			formatFloat(e.P99),
			formatFloat(e.Mean),
			formatFloat(e.Stddev),
			formatFloat(e.Min),
			formatFloat(e.Max),
			formatFloat(e.Throughput),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		f.Close()

		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Load reads a previously saved record.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	if rec.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d in %s",
			rec.SchemaVersion, filepath.Base(path))
	}

	return &rec, nil
}

// Latest loads the most recent run record under dir. Timestamped file
// names sort chronologically.
func Latest(dir string) (*Record, error) {
	files, err := filepath.Glob(filepath.Join(dir, "benchmark_*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no benchmark results in %s", dir)
	}

	sort.Strings(files)

	return Load(files[len(files)-1])
}
