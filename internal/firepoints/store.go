// Package firepoints reads the raw AK fire location points collection.
package firepoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"fireaid/internal/models"
)

const (
	MinLimit         = 1
	MaxLimit         = 100
	defaultOpTimeout = 5 * time.Second
)

var (
	ErrQueryFailed = errors.New("FIRE_POINTS_QUERY_FAILED")
	ErrCountFailed = errors.New("FIRE_POINTS_COUNT_FAILED")
)

type (
	collection interface {
		Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (cursor, error)
		CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
	}

	cursor interface {
		Next(ctx context.Context) bool
		Current() bson.Raw
		Err() error
		Close(ctx context.Context) error
	}

	mongoCollection struct {
		coll *mongo.Collection
	}

	mongoCursor struct {
		cur *mongo.Cursor
	}
)

func (c mongoCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (cursor, error) {
	cur, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return mongoCursor{cur: cur}, nil
}

func (c mongoCollection) CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error) {
	return c.coll.CountDocuments(ctx, filter, opts...)
}

func (c mongoCursor) Next(ctx context.Context) bool   { return c.cur.Next(ctx) }
func (c mongoCursor) Current() bson.Raw               { return c.cur.Current }
func (c mongoCursor) Err() error                      { return c.cur.Err() }
func (c mongoCursor) Close(ctx context.Context) error { return c.cur.Close(ctx) }

// Store answers search_fire_points and count_by_year.
type Store struct {
	coll    collection
	timeout time.Duration
}

// NewStore wraps a Mongo collection.
func NewStore(coll *mongo.Collection, timeout time.Duration) *Store {
	return newStoreWithCollection(mongoCollection{coll: coll}, timeout)
}

func newStoreWithCollection(coll collection, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return &Store{coll: coll, timeout: timeout}
}

// Search returns matching points as JSON objects in stored field order, without _id.
func (s *Store) Search(ctx context.Context, q models.FirePointQuery) ([]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().
		SetProjection(Projection()).
		SetLimit(int64(ClampLimit(q.Limit)))

	cur, err := s.coll.Find(ctx, SearchFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer cur.Close(ctx)

	results := []json.RawMessage{}
	for cur.Next(ctx) {
		doc, err := bson.MarshalExtJSON(cur.Current(), false, false)
		if err != nil {
			return nil, fmt.Errorf("%w: encode document: %v", ErrQueryFailed, err)
		}
		results = append(results, json.RawMessage(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return results, nil
}

// CountByYear counts points whose FIRESEASON equals year as a string or a number.
func (s *Store) CountByYear(ctx context.Context, year int) (models.YearCount, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.coll.CountDocuments(ctx, yearFilter(year))
	if err != nil {
		return models.YearCount{}, fmt.Errorf("%w: %v", ErrCountFailed, err)
	}
	return models.YearCount{Year: year, Count: n}, nil
}

// SearchFilter builds the find filter. Prescribed is applied only for "Y" or "N".
func SearchFilter(q models.FirePointQuery) bson.D {
	filter := bson.D{}
	if q.Year != nil {
		filter = append(filter, yearFilter(*q.Year)...)
	}
	if q.Prescribed == "Y" || q.Prescribed == "N" {
		filter = append(filter, bson.E{Key: "PRESCRIBEDFIRE", Value: q.Prescribed})
	}
	if q.Org != "" {
		filter = append(filter, bson.E{Key: "MGMTORGID", Value: q.Org})
	}
	return filter
}

// FIRESEASON is imported as text but older loads stored numbers.
func yearFilter(year int) bson.D {
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "FIRESEASON", Value: strconv.Itoa(year)}},
		bson.D{{Key: "FIRESEASON", Value: year}},
	}}}
}

// Projection includes models.FirePointProjection and excludes _id.
func Projection() bson.D {
	p := bson.D{{Key: "_id", Value: 0}}
	for _, f := range models.FirePointProjection {
		p = append(p, bson.E{Key: f, Value: 1})
	}
	return p
}

// ClampLimit bounds a requested page size into [MinLimit, MaxLimit].
func ClampLimit(n int) int {
	if n < MinLimit {
		return MinLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}
