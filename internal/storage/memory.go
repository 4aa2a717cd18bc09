package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/portalsearch/internal/models"
)

// MemoryStorage implements Storage in process memory. Records are kept in their
// JSON form so reads return fresh copies with the same value types SQLite yields.
type MemoryStorage struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	values      map[string][]byte
}

type memoryCollection struct {
	order []string
	data  map[string][]byte
}

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		collections: make(map[string]*memoryCollection),
		values:      make(map[string][]byte),
	}
}

// UpsertRecords inserts or replaces records. Replaced records keep their position.
func (m *MemoryStorage) UpsertRecords(_ context.Context, collection string, records []models.Record) error {
	if err := validateRecords(collection, records); err != nil {
		return err
	}
	encoded, err := encodeRecords(records)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.collections[collection]
	if !ok {
		col = &memoryCollection{data: make(map[string][]byte)}
		m.collections[collection] = col
	}
	col.put(records, encoded)
	return nil
}

// ReplaceCollection swaps a collection's contents for records.
func (m *MemoryStorage) ReplaceCollection(_ context.Context, collection string, records []models.Record) error {
	if err := validateRecords(collection, records); err != nil {
		return err
	}
	encoded, err := encodeRecords(records)
	if err != nil {
		return err
	}
	col := &memoryCollection{data: make(map[string][]byte, len(records))}
	col.put(records, encoded)

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(col.order) == 0 {
		delete(m.collections, collection)
		return nil
	}
	m.collections[collection] = col
	return nil
}

// put stores encoded[i] under records[i]'s id; a repeated id keeps its first position.
func (c *memoryCollection) put(records []models.Record, encoded [][]byte) {
	for i, rec := range records {
		id := rec.ID()
		if _, exists := c.data[id]; !exists {
			c.order = append(c.order, id)
		}
		c.data[id] = encoded[i]
	}
}

func encodeRecords(records []models.Record) ([][]byte, error) {
	encoded := make([][]byte, len(records))
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record %s: %w", rec.ID(), err)
		}
		encoded[i] = data
	}
	return encoded, nil
}

// GetRecord returns one record by collection and id.
func (m *MemoryStorage) GetRecord(_ context.Context, collection, id string) (models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	col, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("record %s/%s: %w", collection, id, ErrNotFound)
	}
	data, ok := col.data[id]
	if !ok {
		return nil, fmt.Errorf("record %s/%s: %w", collection, id, ErrNotFound)
	}
	return decodeRecord(string(data))
}

// ListRecords returns the records of a collection in insertion order.
func (m *MemoryStorage) ListRecords(_ context.Context, collection string) ([]models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := []models.Record{}
	col, ok := m.collections[collection]
	if !ok {
		return records, nil
	}
	for _, id := range col.order {
		rec, err := decodeRecord(string(col.data[id]))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// DeleteRecord removes a record. Returns ErrNotFound when it does not exist.
func (m *MemoryStorage) DeleteRecord(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.collections[collection]
	if !ok {
		return fmt.Errorf("record %s/%s: %w", collection, id, ErrNotFound)
	}
	if _, ok := col.data[id]; !ok {
		return fmt.Errorf("record %s/%s: %w", collection, id, ErrNotFound)
	}
	delete(col.data, id)
	for i, v := range col.order {
		if v == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	if len(col.order) == 0 {
		delete(m.collections, collection)
	}
	return nil
}

// DeleteCollection removes every record of a collection.
func (m *MemoryStorage) DeleteCollection(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, collection)
	return nil
}

// ListCollections returns collection names with record counts, sorted by name.
func (m *MemoryStorage) ListCollections(_ context.Context) ([]models.CollectionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]models.CollectionInfo, 0, len(m.collections))
	for name, col := range m.collections {
		infos = append(infos, models.CollectionInfo{Name: name, Count: int64(len(col.order))})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// CountRecords counts one collection, or all records when collection is "".
func (m *MemoryStorage) CountRecords(_ context.Context, collection string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if collection != "" {
		if col, ok := m.collections[collection]; ok {
			return int64(len(col.order)), nil
		}
		return 0, nil
	}
	var total int64
	for _, col := range m.collections {
		total += int64(len(col.order))
	}
	return total, nil
}

// Get returns a copy of the value stored under key.
func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, fmt.Errorf("key %s: %w", key, ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key.
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Close is a no-op.
func (m *MemoryStorage) Close() error {
	return nil
}
