// Package dataset defines the benchmark's typed trip records and reads the
// columnar input files both stores are loaded from.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// Record is one trip row. TripID is the row key in HBase and the _id in
// MongoDB; the parquet column names match the source dataset exactly, so a
// schema change in the files fails at decode time instead of producing
// silently shifted columns.
type Record struct {
	TripID         string  `parquet:"trip_id" bson:"_id"`
	VendorID       int32   `parquet:"vendor_id" bson:"vendor_id"`
	PickupTime     int64   `parquet:"pickup_time" bson:"pickup_time"`
	DropoffTime    int64   `parquet:"dropoff_time" bson:"dropoff_time"`
	PassengerCount int32   `parquet:"passenger_count" bson:"passenger_count"`
	TripDistance   float64 `parquet:"trip_distance" bson:"trip_distance"`
	FareAmount     float64 `parquet:"fare_amount" bson:"fare_amount"`
	TipAmount      float64 `parquet:"tip_amount" bson:"tip_amount"`
	PaymentType    string  `parquet:"payment_type" bson:"payment_type"`
}

// ReadDir reads every *.parquet file under dir, in lexical order.
func ReadDir(dir string) ([]Record, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no parquet files in %s", dir)
	}

	var records []Record

	for _, f := range files {
		rows, err := parquet.ReadFile[Record](f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(f), err)
		}

		records = append(records, rows...)
	}

	return records, nil
}

// WriteFile writes records to a single parquet file.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := parquet.NewGenericWriter[Record](f)

	if _, err := w.Write(records); err != nil {
		f.Close()

		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := w.Close(); err != nil {
		f.Close()

		return fmt.Errorf("flush %s: %w", path, err)
	}

	return f.Close()
}

// Chunk splits records into batches of at most size elements. The final
// batch may be short.
func Chunk(records []Record, size int) [][]Record {
	if len(records) == 0 {
		return nil
	}

	if size < 1 {
		size = len(records)
	}

	batches := make([][]Record, 0, (len(records)+size-1)/size)

	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, records[start:end])
	}

	return batches
}
