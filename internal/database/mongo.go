// Package database holds the MongoDB destination layer: the run-scoped
// connection, per-collection write handles with replace semantics, and
// collection dumps for pre-migration safety backups.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is the destination connection, acquired once at run start and held
// for the run's duration.
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect establishes and pings the destination. Connection failure here is
// the only unconditionally fatal condition of a run.
func Connect(uri, dbName string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Mongo{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

func (m *Mongo) ListCollections() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	names, err := m.Database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// Store returns the write handle for one destination collection.
func (m *Mongo) Store(collection string) *Store {
	return &Store{coll: m.Database.Collection(collection)}
}

// Store writes records of one (site, kind) pair to its collection with full
// replace semantics: Clear then chunked Insert.
type Store struct {
	coll *mongo.Collection
}

// Clear deletes every document in the collection and returns the number
// removed. Replace, not upsert: no record from a previous run survives.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to clear collection %s: %w", s.coll.Name(), err)
	}
	return res.DeletedCount, nil
}

// Insert writes one chunk unordered, so a rejected document does not stop
// the rest of the chunk. It returns how many documents were actually
// inserted; on a partial failure both the count and the error are returned.
func (s *Store) Insert(ctx context.Context, docs []any) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(docs), nil
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		inserted := len(docs) - len(bwe.WriteErrors)
		if inserted < 0 {
			inserted = 0
		}
		return inserted, err
	}
	return 0, fmt.Errorf("failed to insert chunk into %s: %w", s.coll.Name(), err)
}

func (s *Store) Name() string { return s.coll.Name() }
