// internal/common/database/mongo.go
package database

import (
	"context"
	"fmt"

	"fireaid/internal/common/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoClient wraps the Mongo client and the configured fire-points collection.
type MongoClient struct {
	Client     *mongo.Client
	database   string
	collection string
}

// NewMongo creates a Mongo client. The driver connects lazily; call Ping to verify.
func NewMongo(cfg config.MongoConfig) (*MongoClient, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(config.GetDuration(cfg.ServerSelectionTimeout))

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}

	return &MongoClient{
		Client:     client,
		database:   cfg.Database,
		collection: cfg.Collection,
	}, nil
}

// Ping tests the Mongo connection
func (c *MongoClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// Collection returns the configured collection handle.
func (c *MongoClient) Collection() *mongo.Collection {
	return c.Client.Database(c.database).Collection(c.collection)
}

// Namespace returns "<db>.<collection>".
func (c *MongoClient) Namespace() string {
	return c.database + "." + c.collection
}

// Close disconnects the client
func (c *MongoClient) Close(ctx context.Context) error {
	if c.Client != nil {
		return c.Client.Disconnect(ctx)
	}
	return nil
}
