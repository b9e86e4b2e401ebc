package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/tsuna/gohbase"
	"github.com/tsuna/gohbase/filter"
	"github.com/tsuna/gohbase/hrpc"

	"github.com/storbench/storbench/dataset"
	"github.com/storbench/storbench/trial"
)

// HBaseConfig holds connection parameters for the wide-column store. The
// client locates region servers through the ZooKeeper quorum.
type HBaseConfig struct {
	Quorum       string
	Table        string
	ColumnFamily string
	SampleSize   int
}

// HBase benchmarks an HBase table of trip rows through the native client.
type HBase struct {
	cfg    HBaseConfig
	client gohbase.Client
	logger *slog.Logger
}

// ConnectHBase creates the client. gohbase dials lazily, so connectivity
// errors surface on the first Load or Operations call.
func ConnectHBase(cfg HBaseConfig, logger *slog.Logger) *HBase {
	return &HBase{
		cfg:    cfg,
		client: gohbase.NewClient(cfg.Quorum),
		logger: logger.With(slog.String("store", "hbase")),
	}
}

func (h *HBase) Name() string { return "hbase" }

// Load recreates the table and writes records as stringly-typed cells
// under the configured column family, keyed by trip ID. The client
// coalesces puts internally; batches only bound progress logging.
func (h *HBase) Load(ctx context.Context, records []dataset.Record, batchSize int) (LoadSummary, error) {
	if err := h.recreateTable(ctx); err != nil {
		return LoadSummary{}, err
	}

	start := time.Now()
	loaded := 0

	for _, batch := range dataset.Chunk(records, batchSize) {
		for _, rec := range batch {
			put, err := hrpc.NewPutStr(ctx, h.cfg.Table, rec.TripID, h.cells(rec))
			if err != nil {
				return LoadSummary{}, fmt.Errorf("build put %s: %w", rec.TripID, err)
			}

			if _, err := h.client.Put(put); err != nil {
				return LoadSummary{}, fmt.Errorf("put %s: %w", rec.TripID, err)
			}
		}

		loaded += len(batch)
		h.logger.Debug("batch written", slog.Int("loaded", loaded))
	}

	return LoadSummary{Records: loaded, Elapsed: time.Since(start)}, nil
}

func (h *HBase) Rows(ctx context.Context) (int, error) {
	return h.drainScan(ctx, 0)
}

// Operations scans sample row keys and returns the five read patterns
// bound to this table.
func (h *HBase) Operations(ctx context.Context) ([]Operation, error) {
	keys, err := h.scanKeys(ctx, h.cfg.SampleSize)
	if err != nil {
		return nil, fmt.Errorf("sample keys: %w", err)
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("table %s is empty", h.cfg.Table)
	}

	var next int

	pointQuery := func(ctx context.Context) error {
		key := keys[next%len(keys)]
		next++

		get, err := hrpc.NewGetStr(ctx, h.cfg.Table, key)
		if err != nil {
			return err
		}

		_, err = h.client.Get(get)

		return err
	}

	countAll := func(ctx context.Context) error {
		_, err := h.drainScan(ctx, 0)

		return err
	}

	// The first two bytes of a row key select a bucket of the ordered
	// key space.
	prefix := keys[0]
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}

	prefixScan := func(ctx context.Context) error {
		_, err := h.drainScan(ctx, 100,
			hrpc.Filters(filter.NewPrefixFilter([]byte(prefix))))

		return err
	}

	return []Operation{
		{Name: "point_query", Run: pointQuery},
		{Name: "range_scan_100", Run: h.rangeScan(100)},
		{Name: "range_scan_1000", Iterations: 50, Run: h.rangeScan(1000)},
		{Name: "count_all", Iterations: 5, Run: countAll},
		{Name: "prefix_scan", Iterations: 50, Run: prefixScan},
	}, nil
}

func (h *HBase) rangeScan(limit int) trial.Operation {
	return func(ctx context.Context) error {
		_, err := h.drainScan(ctx, limit, hrpc.NumberOfRows(uint32(limit)))

		return err
	}
}

// drainScan materializes up to limit rows (0 means all), returning the
// row count.
func (h *HBase) drainScan(ctx context.Context, limit int, opts ...func(hrpc.Call) error) (int, error) {
	scan, err := hrpc.NewScanStr(ctx, h.cfg.Table, opts...)
	if err != nil {
		return 0, err
	}

	scanner := h.client.Scan(scan)
	defer scanner.Close()

	rows := 0

	for limit <= 0 || rows < limit {
		if _, err := scanner.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return rows, err
		}

		rows++
	}

	return rows, nil
}

func (h *HBase) scanKeys(ctx context.Context, limit int) ([]string, error) {
	scan, err := hrpc.NewScanStr(ctx, h.cfg.Table)
	if err != nil {
		return nil, err
	}

	scanner := h.client.Scan(scan)
	defer scanner.Close()

	keys := make([]string, 0, limit)

	for len(keys) < limit {
		res, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		if len(res.Cells) > 0 {
			keys = append(keys, string(res.Cells[0].Row))
		}
	}

	return keys, nil
}

// cells renders a record as one column-family map of UTF-8 cell values,
// the same shape the production importer writes.
func (h *HBase) cells(rec dataset.Record) map[string]map[string][]byte {
	return map[string]map[string][]byte{
		h.cfg.ColumnFamily: {
			"vendor_id":       []byte(strconv.FormatInt(int64(rec.VendorID), 10)),
			"pickup_time":     []byte(strconv.FormatInt(rec.PickupTime, 10)),
			"dropoff_time":    []byte(strconv.FormatInt(rec.DropoffTime, 10)),
			"passenger_count": []byte(strconv.FormatInt(int64(rec.PassengerCount), 10)),
			"trip_distance":   []byte(strconv.FormatFloat(rec.TripDistance, 'f', -1, 64)),
			"fare_amount":     []byte(strconv.FormatFloat(rec.FareAmount, 'f', -1, 64)),
			"tip_amount":      []byte(strconv.FormatFloat(rec.TipAmount, 'f', -1, 64)),
			"payment_type":    []byte(rec.PaymentType),
		},
	}
}

// recreateTable drops any previous table and creates a fresh one with the
// configured column family. Disable-then-delete is required by HBase; a
// table that was never created is fine.
func (h *HBase) recreateTable(ctx context.Context) error {
	admin := gohbase.NewAdminClient(h.cfg.Quorum)

	disable := hrpc.NewDisableTable(ctx, []byte(h.cfg.Table))
	if err := admin.DisableTable(disable); err == nil {
		del := hrpc.NewDeleteTable(ctx, []byte(h.cfg.Table))
		if err := admin.DeleteTable(del); err != nil {
			return fmt.Errorf("delete table %s: %w", h.cfg.Table, err)
		}
	}

	create := hrpc.NewCreateTable(ctx, []byte(h.cfg.Table),
		map[string]map[string]string{h.cfg.ColumnFamily: nil})
	if err := admin.CreateTable(create); err != nil {
		return fmt.Errorf("create table %s: %w", h.cfg.Table, err)
	}

	return nil
}

func (h *HBase) Close(context.Context) error {
	h.client.Close()

	return nil
}
