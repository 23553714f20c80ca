// Package mongo is the MongoDB document store backend.
package mongo

import (
	"context"
	"fmt"
	"time"

	"homelead-workers/internal/common/metrics"
	"homelead-workers/internal/models"
	"homelead-workers/internal/query/filter"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const backend = "mongo"

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) Find(ctx context.Context, collection models.Collection, f filter.Filter, limit int64) ([]models.Record, error) {
	defer metrics.ObserveStore(backend, "find", time.Now())

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.db.Collection(string(collection)).Find(ctx, toBSON(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return decodeAll(ctx, cursor)
}

func (s *Store) Aggregate(ctx context.Context, collection models.Collection, pipeline []map[string]interface{}) ([]models.Record, error) {
	defer metrics.ObserveStore(backend, "aggregate", time.Now())

	stages := make(bson.A, len(pipeline))
	for i, stage := range pipeline {
		stages[i] = toBSON(stage)
	}

	cursor, err := s.db.Collection(string(collection)).Aggregate(ctx, stages)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", collection, err)
	}
	return decodeAll(ctx, cursor)
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]models.Record, error) {
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	records := make([]models.Record, len(docs))
	for i, d := range docs {
		records[i] = models.Record(fromBSON(d).(map[string]interface{}))
	}
	return records, nil
}

// toBSON converts a filter tree into bson.M / bson.A so the driver never
// sees the named Filter type.
func toBSON(v interface{}) interface{} {
	switch t := v.(type) {
	case filter.Filter:
		return toBSON(map[string]interface{}(t))
	case map[string]interface{}:
		out := make(bson.M, len(t))
		for k, val := range t {
			out[k] = toBSON(val)
		}
		return out
	case []map[string]interface{}:
		out := make(bson.A, len(t))
		for i, val := range t {
			out[i] = toBSON(val)
		}
		return out
	case []interface{}:
		out := make(bson.A, len(t))
		for i, val := range t {
			out[i] = toBSON(val)
		}
		return out
	}
	return v
}

// fromBSON turns decoded documents into plain maps and slices.
func fromBSON(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.M:
		return fromBSON(map[string]interface{}(t))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = fromBSON(val)
		}
		return out
	case bson.D:
		out := make(map[string]interface{}, len(t))
		for _, e := range t {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = fromBSON(val)
		}
		return out
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Decimal128:
		return t.String()
	}
	return v
}
