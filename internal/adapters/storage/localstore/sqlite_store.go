package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"signupdesk/internal/adapters/storage"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// GetItem returns the value for key; ok is false when the key is absent.
// PRE: key is non-empty
// POST: Returns the stored value or ok=false
func (s *SQLiteStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem inserts or replaces the value for key.
// PRE: key is non-empty
// POST: GetItem(key) returns value
func (s *SQLiteStore) SetItem(ctx context.Context, key, value string) error {
	return s.SetItems(ctx, map[string]string{key: value})
}

// SetItems writes all items in one transaction.
// PRE: every key is non-empty
// POST: Either every item is stored or none is
func (s *SQLiteStore) SetItems(ctx context.Context, items map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	updatedAt := s.now().UTC().Format(timeLayout)
	for key, value := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
			key, value, updatedAt); err != nil {
			tx.Rollback()
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// RemoveItems deletes the given keys. Absent keys are ignored.
// POST: GetItem reports ok=false for every key
func (s *SQLiteStore) RemoveItems(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("remove %v: %w", keys, err)
	}
	return nil
}
