package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/matzehuels/streetblock/pkg/cache"
	cityio "github.com/matzehuels/streetblock/pkg/io"
)

// Collection is the MongoDB collection snapshots are stored in.
const Collection = "cities"

// DefaultDatabase is used when the URI names no database.
const DefaultDatabase = "streetblock"

// MongoStore keeps snapshots as documents keyed by run ID. Network failures
// and timeouts are returned wrapped with [cache.Retryable].
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and pings the primary. The database is taken
// from the URI path, or [DefaultDatabase] when the path is empty.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	opts := options.Client().ApplyURI(uri)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("mongo uri: %w", err)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(databaseName(uri)).Collection(Collection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, c *cityio.City) error {
	if err := checkID(c.ID); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	return classify(err)
}

func (s *MongoStore) Load(ctx context.Context, id string) (*cityio.City, error) {
	var c cityio.City
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List leaves point coordinates and lots on the server; only their count is
// needed for the summary.
func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "seed", Value: 1},
			{Key: "generation", Value: 1},
			{Key: "points", Value: bson.D{{Key: "$size", Value: "$points"}}},
			{Key: "cells", Value: bson.D{{Key: "$size", Value: "$cells"}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, classify(err)
	}
	defer cur.Close(ctx)

	var out []Summary
	for cur.Next(ctx) {
		var doc struct {
			ID         string `bson:"_id"`
			Seed       uint64 `bson:"seed"`
			Generation int    `bson:"generation"`
			Points     int    `bson:"points"`
			Cells      int    `bson:"cells"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
		out = append(out, Summary(doc))
	}
	return out, classify(cur.Err())
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func databaseName(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil || cs.Database == "" {
		return DefaultDatabase
	}
	return cs.Database
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Retryable(err)
	}
	return err
}

var _ Store = (*MongoStore)(nil)
