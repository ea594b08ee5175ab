package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

// kvStore implements ports.KVStore on the kv table.
type kvStore struct {
	db *sql.DB
}

func newKVStore(db *sql.DB) ports.KVStore {
	return &kvStore{db: db}
}

// Get returns the raw record for key or domain.ErrRecordNotFound.
func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put creates or replaces the record for key.
func (s *kvStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), time.Now())
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// Delete removes the record for key.
func (s *kvStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
