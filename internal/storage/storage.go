// Package storage defines the persistence interfaces for collection records and small named values.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/portalsearch/internal/models"
)

// ErrNotFound is returned when a record or key does not exist.
var ErrNotFound = errors.New("not found")

// RecordStore persists records grouped by collection.
type RecordStore interface {
	// UpsertRecords inserts or replaces records by their "id" field. Every record must carry one.
	UpsertRecords(ctx context.Context, collection string, records []models.Record) error
	GetRecord(ctx context.Context, collection, id string) (models.Record, error)
	// ListRecords returns a collection in insertion order. Unknown collections are empty.
	ListRecords(ctx context.Context, collection string) ([]models.Record, error)
	DeleteRecord(ctx context.Context, collection, id string) error
	DeleteCollection(ctx context.Context, collection string) error
	// ReplaceCollection atomically swaps a collection's contents for records, in
	// their given order. An empty slice leaves the collection empty.
	ReplaceCollection(ctx context.Context, collection string, records []models.Record) error
	ListCollections(ctx context.Context) ([]models.CollectionInfo, error)
	// CountRecords counts one collection, or all records when collection is "".
	CountRecords(ctx context.Context, collection string) (int64, error)
}

// KeyValueStore holds named opaque values (JSON documents in practice).
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Storage combines record and key-value persistence.
type Storage interface {
	RecordStore
	KeyValueStore
	Close() error
}

func validateRecords(collection string, records []models.Record) error {
	if collection == "" {
		return errors.New("collection name is required")
	}
	for i, rec := range records {
		if rec == nil {
			return fmt.Errorf("record %d is nil", i)
		}
		if rec.ID() == "" {
			return fmt.Errorf("record %d has no id", i)
		}
	}
	return nil
}
