package results

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storbench/storbench/stats"
)

func sampleRecord(ts time.Time) *Record {
	meta := Meta{
		Timestamp:     ts,
		Warmup:        10,
		Iterations:    100,
		DatasetRows:   50000,
		FailurePolicy: "abort",
	}

	entries := []Entry{
		{
			Store:     "mongodb",
			Operation: "point_query",
			Samples:   100,
			Summary: stats.Summary{
				P50: 1.2, P95: 3.4, P99: 5.6,
				Mean: 1.5, Stddev: 0.7, Min: 0.9, Max: 6.1,
				Throughput: 666.67,
			},
		},
		{
			Store:     "hbase",
			Operation: "point_query",
			Samples:   100,
			Summary: stats.Summary{
				P50: 2.2, P95: 4.4, P99: 6.6,
				Mean: 2.5, Stddev: 0.9, Min: 1.9, Max: 7.1,
				Throughput: 400.0,
			},
		},
	}

	return Assemble(meta, entries)
}

func TestAssembleAndLookup(t *testing.T) {
	rec := sampleRecord(time.Now())

	assert.Equal(t, SchemaVersion, rec.SchemaVersion)

	e, ok := rec.Lookup("hbase", "point_query")
	require.True(t, ok)
	assert.Equal(t, 2.2, e.P50)

	_, ok = rec.Lookup("hbase", "aggregation")
	assert.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	rec := sampleRecord(ts)

	path, err := rec.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, "benchmark_20260314_092653.json", filepath.Base(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, rec.Meta, loaded.Meta)
	assert.Equal(t, rec.Entries, loaded.Entries)
}

func TestSaveWritesCSV(t *testing.T) {
	dir := t.TempDir()
	rec := sampleRecord(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	jsonPath, err := rec.Save(dir)
	require.NoError(t, err)

	csvPath := strings.TrimSuffix(jsonPath, ".json") + ".csv"
	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per entry")
	assert.Equal(t, "store", rows[0][0])
	assert.Equal(t, "mongodb", rows[1][0])
	assert.Equal(t, "1.200", rows[1][3])
}

func TestLatestPicksNewestRun(t *testing.T) {
	dir := t.TempDir()

	older := sampleRecord(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	_, err := older.Save(dir)
	require.NoError(t, err)

	newer := sampleRecord(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	newer.Entries = newer.Entries[:1]
	_, err = newer.Save(dir)
	require.NoError(t, err)

	latest, err := Latest(dir)
	require.NoError(t, err)
	assert.Equal(t, newer.Timestamp, latest.Timestamp)
	assert.Len(t, latest.Entries, 1)
}

func TestLatestEmptyDir(t *testing.T) {
	_, err := Latest(t.TempDir())
	require.Error(t, err)
}

func TestLoadRejectsUnknownSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "benchmark_20990101_000000.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"schema_version": 99, "results": []}`), 0o644))

	_, err := Load(path)
	require.ErrorContains(t, err, "schema version")
}
