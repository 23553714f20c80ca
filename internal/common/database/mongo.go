// internal/common/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"homelead-workers/internal/common/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoClient wraps the driver client and the application database handle.
type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongo connects to MongoDB. The driver dials lazily, so a nil error
// does not mean the server is reachable; use Ping for that.
func NewMongo(ctx context.Context, cfg config.MongoConfig) (*MongoClient, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(time.Duration(cfg.ConnectTimeout) * time.Millisecond).
		SetServerSelectionTimeout(time.Duration(cfg.ConnectTimeout) * time.Millisecond)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	return &MongoClient{
		Client:   client,
		Database: client.Database(cfg.Database),
	}, nil
}

// DialMongo connects and pings. A client that fails the ping is disconnected
// before returning, so retry loops do not pile up idle pools.
func DialMongo(ctx context.Context, cfg config.MongoConfig) (*MongoClient, error) {
	mc, err := NewMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := mc.Ping(ctx); err != nil {
		_ = mc.Close(ctx)
		return nil, err
	}
	return mc, nil
}

// Ping tests the MongoDB connection against the primary
func (c *MongoClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// Close disconnects the client
func (c *MongoClient) Close(ctx context.Context) error {
	if c.Client != nil {
		return c.Client.Disconnect(ctx)
	}
	return nil
}
