// Package storage provides SQLite implementations of the storage ports.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xvierd/pomodoro-pro/internal/ports"
	"modernc.org/sqlite"
)

const schemaVersion = 1

// sqliteStorage implements the ports.Storage interface using SQLite.
type sqliteStorage struct {
	db          *sql.DB
	taskRepo    ports.TaskRepository
	sessionRepo ports.SessionRepository
	statsRepo   ports.StatsRepository
	kv          ports.KVStore
}

// Ensure sqliteStorage implements ports.Storage.
var _ ports.Storage = (*sqliteStorage)(nil)

// New opens (or creates) the SQLite database at dbPath and migrates it.
func New(dbPath string) (ports.Storage, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serialises writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to exec %q: %w", p, err)
		}
	}

	storage := &sqliteStorage{
		db:          db,
		taskRepo:    newTaskRepository(db),
		sessionRepo: newSessionRepository(db),
		statsRepo:   newStatsRepository(db),
		kv:          newKVStore(db),
	}

	if err := storage.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return storage, nil
}

// NewMemory creates a new in-memory SQLite storage instance for testing.
func NewMemory() (ports.Storage, error) {
	return New(":memory:")
}

// Tasks returns the task repository.
func (s *sqliteStorage) Tasks() ports.TaskRepository {
	return s.taskRepo
}

// Sessions returns the session repository.
func (s *sqliteStorage) Sessions() ports.SessionRepository {
	return s.sessionRepo
}

// Stats returns the daily stats repository.
func (s *sqliteStorage) Stats() ports.StatsRepository {
	return s.statsRepo
}

// KV returns the key-value record store.
func (s *sqliteStorage) KV() ports.KVStore {
	return s.kv
}

// Close closes the database connection.
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// Migrate brings the schema up to schemaVersion.
func (s *sqliteStorage) Migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

func (s *sqliteStorage) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'work',
		status TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '',
		estimated_pomodoros INTEGER NOT NULL DEFAULT 1,
		completed_pomodoros INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_tasks_updated ON tasks(updated_at);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		task_id TEXT,
		mode TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		skipped INTEGER NOT NULL DEFAULT 0,
		git_branch TEXT NOT NULL DEFAULT '',
		finished_at DATETIME NOT NULL,
		FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE SET NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_task ON sessions(task_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_finished ON sessions(finished_at);

	CREATE TABLE IF NOT EXISTS daily_stats (
		date TEXT PRIMARY KEY,
		completed_pomodoros INTEGER NOT NULL DEFAULT 0,
		focus_minutes INTEGER NOT NULL DEFAULT 0,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		tasks_completed INTEGER NOT NULL DEFAULT 0,
		sessions_completed INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// isUniqueConstraintError checks if an error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == 2067 // SQLITE_CONSTRAINT_UNIQUE
}
