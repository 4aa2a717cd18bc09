package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/portalsearch/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist. ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);

	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

const upsertRecordSQL = `INSERT INTO records (collection, id, data, created_at, updated_at)
	 VALUES (?, ?, ?, ?, ?)
	 ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

// UpsertRecords inserts or replaces records in a transaction. Replaced records keep their position.
func (s *SQLiteStorage) UpsertRecords(ctx context.Context, collection string, records []models.Record) error {
	if err := validateRecords(collection, records); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertRecords(ctx, tx, collection, records); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceCollection deletes a collection and inserts records in one transaction.
func (s *SQLiteStorage) ReplaceCollection(ctx context.Context, collection string, records []models.Record) error {
	if err := validateRecords(collection, records); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection); err != nil {
		return err
	}
	if err := upsertRecords(ctx, tx, collection, records); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertRecords(ctx context.Context, tx *sql.Tx, collection string, records []models.Record) error {
	stmt, err := tx.PrepareContext(ctx, upsertRecordSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record %s: %w", rec.ID(), err)
		}
		if _, err := stmt.ExecContext(ctx, collection, rec.ID(), string(data), now, now); err != nil {
			return err
		}
	}
	return nil
}

// GetRecord returns one record by collection and id.
func (s *SQLiteStorage) GetRecord(ctx context.Context, collection, id string) (models.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE collection = ? AND id = ?`, collection, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

// ListRecords returns all records of a collection ordered by insertion.
func (s *SQLiteStorage) ListRecords(ctx context.Context, collection string) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM records WHERE collection = ? ORDER BY rowid`, collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteRecord removes a record. Returns ErrNotFound when nothing was deleted.
func (s *SQLiteStorage) DeleteRecord(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("record %s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

// DeleteCollection removes every record of a collection.
func (s *SQLiteStorage) DeleteCollection(ctx context.Context, collection string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection)
	return err
}

// ListCollections returns collection names with record counts, sorted by name.
func (s *SQLiteStorage) ListCollections(ctx context.Context) ([]models.CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT collection, COUNT(*) FROM records GROUP BY collection ORDER BY collection`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	infos := []models.CollectionInfo{}
	for rows.Next() {
		var info models.CollectionInfo
		if err := rows.Scan(&info.Name, &info.Count); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// CountRecords returns the number of records in collection, or in all collections when it is "".
func (s *SQLiteStorage) CountRecords(ctx context.Context, collection string) (int64, error) {
	var count int64
	var err error
	if collection == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE collection = ?`, collection).Scan(&count)
	}
	return count, err
}

// Get returns the value stored under key.
func (s *SQLiteStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("key %s: %w", key, ErrNotFound)
	}
	return value, err
}

// Set stores value under key, replacing any previous value.
func (s *SQLiteStorage) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLiteStorage) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func decodeRecord(data string) (models.Record, error) {
	var rec models.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}
