package watcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/portalsearch/internal/loader"
	"github.com/hyperjump/portalsearch/internal/storage"
)

const importTimeout = 30 * time.Second

// Importer loads changed import files into a RecordStore and drops the
// collection of a removed file. It implements Handler.
type Importer struct {
	loader *loader.Loader
	store  storage.RecordStore
	logger *zap.Logger
}

// NewImporter creates an importer writing to store. A nil logger is replaced with a no-op one.
func NewImporter(store storage.RecordStore, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{loader: loader.NewLoader(), store: store, logger: logger}
}

// Import loads path and replaces the file's collection with its records, so
// the stored collection always mirrors the file. It returns the collection
// name and the number of records written.
func (i *Importer) Import(ctx context.Context, path string) (string, int, error) {
	col, err := i.loader.LoadFile(path)
	if err != nil {
		return "", 0, err
	}
	if err := i.store.ReplaceCollection(ctx, col.Name, col.Records); err != nil {
		return col.Name, 0, fmt.Errorf("failed to store collection %s: %w", col.Name, err)
	}
	return col.Name, len(col.Records), nil
}

// FileChanged imports path, logging the outcome.
func (i *Importer) FileChanged(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()
	name, n, err := i.Import(ctx, path)
	if err != nil {
		i.logger.Warn("import failed", zap.String("path", path), zap.Error(err))
		return
	}
	i.logger.Info("collection imported", zap.String("path", path), zap.String("collection", name), zap.Int("records", n))
}

// FileRemoved deletes the collection the file at path imported into.
func (i *Importer) FileRemoved(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()
	name := loader.CollectionName(path)
	if err := i.store.DeleteCollection(ctx, name); err != nil {
		i.logger.Warn("failed to delete collection", zap.String("collection", name), zap.Error(err))
		return
	}
	i.logger.Info("collection removed", zap.String("path", path), zap.String("collection", name))
}
