package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/storbench/storbench/dataset"
	"github.com/storbench/storbench/trial"
)

// MongoConfig holds connection parameters for the document store.
type MongoConfig struct {
	Host       string
	Port       int
	Database   string
	Collection string
	SampleSize int // row keys sampled for point queries
}

// Mongo benchmarks a MongoDB collection of trip documents.
type Mongo struct {
	cfg    MongoConfig
	client *mongo.Client
	coll   *mongo.Collection
	logger *slog.Logger
}

// ConnectMongo dials the document store and verifies it is reachable.
func ConnectMongo(ctx context.Context, cfg MongoConfig, logger *slog.Logger) (*Mongo, error) {
	uri := fmt.Sprintf("mongodb://%s:%d", cfg.Host, cfg.Port)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", uri, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)

		return nil, fmt.Errorf("ping %s: %w", uri, err)
	}

	return &Mongo{
		cfg:    cfg,
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		logger: logger.With(slog.String("store", "mongodb")),
	}, nil
}

func (m *Mongo) Name() string { return "mongodb" }

// Load drops the collection, inserts records in unordered batches, and
// indexes the aggregation group key.
func (m *Mongo) Load(ctx context.Context, records []dataset.Record, batchSize int) (LoadSummary, error) {
	if err := m.coll.Drop(ctx); err != nil {
		return LoadSummary{}, fmt.Errorf("drop collection %s: %w", m.cfg.Collection, err)
	}

	start := time.Now()
	loaded := 0

	for _, batch := range dataset.Chunk(records, batchSize) {
		docs := make([]interface{}, len(batch))
		for i := range batch {
			docs[i] = batch[i]
		}

		if _, err := m.coll.InsertMany(ctx, docs,
			options.InsertMany().SetOrdered(false)); err != nil {
			return LoadSummary{}, fmt.Errorf("insert batch at %d: %w", loaded, err)
		}

		loaded += len(batch)
		m.logger.Debug("batch inserted", slog.Int("loaded", loaded))
	}

	if _, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "payment_type", Value: 1}},
	}); err != nil {
		return LoadSummary{}, fmt.Errorf("create index: %w", err)
	}

	return LoadSummary{Records: loaded, Elapsed: time.Since(start)}, nil
}

func (m *Mongo) Rows(ctx context.Context) (int, error) {
	n, err := m.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", m.cfg.Collection, err)
	}

	return int(n), nil
}

// Operations samples document keys and returns the five read patterns
// bound to this collection.
func (m *Mongo) Operations(ctx context.Context) ([]Operation, error) {
	keys, err := m.sampleKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("sample keys: %w", err)
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("collection %s is empty", m.cfg.Collection)
	}

	// Trials run strictly sequentially, so a plain counter rotates
	// through the sampled keys.
	var next int

	pointQuery := func(ctx context.Context) error {
		key := keys[next%len(keys)]
		next++

		res := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}})
		if err := res.Err(); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}

		return nil
	}

	countAll := func(ctx context.Context) error {
		_, err := m.coll.CountDocuments(ctx, bson.D{})

		return err
	}

	aggregation := func(ctx context.Context) error {
		pipeline := mongo.Pipeline{
			bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$payment_type"},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
			bson.D{{Key: "$limit", Value: 100}},
		}

		cur, err := m.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}

		var groups []bson.M

		return cur.All(ctx, &groups)
	}

	return []Operation{
		{Name: "point_query", Run: pointQuery},
		{Name: "range_scan_100", Run: m.rangeScan(100)},
		{Name: "range_scan_1000", Iterations: 50, Run: m.rangeScan(1000)},
		{Name: "count_all", Iterations: 20, Run: countAll},
		{Name: "aggregation", Iterations: 50, Run: aggregation},
	}, nil
}

// rangeScan returns a callable that fetches up to limit documents and
// drains the cursor, so the sample covers the full transfer.
func (m *Mongo) rangeScan(limit int64) trial.Operation {
	return func(ctx context.Context) error {
		cur, err := m.coll.Find(ctx, bson.D{}, options.Find().SetLimit(limit))
		if err != nil {
			return err
		}

		var rows []dataset.Record

		return cur.All(ctx, &rows)
	}
}

func (m *Mongo) sampleKeys(ctx context.Context) ([]string, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: m.cfg.SampleSize}}}},
	}

	cur, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var docs []struct {
		ID string `bson:"_id"`
	}

	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	keys := make([]string, len(docs))
	for i, d := range docs {
		keys[i] = d.ID
	}

	return keys, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
