package importer

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoTarget writes to a Mongo collection with unordered bulk inserts.
type MongoTarget struct {
	coll *mongo.Collection
}

func NewMongoTarget(coll *mongo.Collection) *MongoTarget {
	return &MongoTarget{coll: coll}
}

func (t *MongoTarget) Drop(ctx context.Context) error {
	return t.coll.Drop(ctx)
}

func (t *MongoTarget) InsertMany(ctx context.Context, docs []interface{}) error {
	_, err := t.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

func (t *MongoTarget) Count(ctx context.Context) (int64, error) {
	return t.coll.CountDocuments(ctx, bson.D{})
}
