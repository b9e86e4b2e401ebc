package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(Config{Rows: 50, Seed: 7}).Generate()
	b := NewGenerator(Config{Rows: 50, Seed: 7}).Generate()
	assert.Equal(t, a, b)

	c := NewGenerator(Config{Rows: 50, Seed: 8}).Generate()
	assert.NotEqual(t, a, c)
}

func TestGeneratorShape(t *testing.T) {
	records := NewGenerator(Config{Rows: 10, Seed: 1}).Generate()
	require.Len(t, records, 10)

	seen := make(map[string]bool, len(records))

	for _, r := range records {
		assert.False(t, seen[r.TripID], "duplicate key %s", r.TripID)
		seen[r.TripID] = true

		assert.Greater(t, r.DropoffTime, r.PickupTime)
		assert.Greater(t, r.TripDistance, 0.0)
		assert.Contains(t, paymentTypes, r.PaymentType)
	}
}

func TestChunk(t *testing.T) {
	records := NewGenerator(Config{Rows: 10, Seed: 1}).Generate()

	batches := Chunk(records, 4)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 4)
	assert.Len(t, batches[1], 4)
	assert.Len(t, batches[2], 2)

	// Non-positive size collapses to a single batch.
	assert.Len(t, Chunk(records, 0), 1)
	assert.Empty(t, Chunk(nil, 4))
}

func TestChunkEmptyInput(t *testing.T) {
	assert.Empty(t, Chunk(nil, 0))
	assert.Empty(t, Chunk([]Record{}, 0))
	assert.Empty(t, Chunk([]Record{}, -1))
}

func TestReadDirRoundTrip(t *testing.T) {
	dir := t.TempDir()
	records := NewGenerator(Config{Rows: 25, Seed: 3}).Generate()

	// Two files; ReadDir must concatenate them in lexical order.
	require.NoError(t, WriteFile(filepath.Join(dir, "part-0.parquet"), records[:10]))
	require.NoError(t, WriteFile(filepath.Join(dir, "part-1.parquet"), records[10:]))

	got, err := ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestReadDirEmpty(t *testing.T) {
	_, err := ReadDir(t.TempDir())
	require.Error(t, err)
}
