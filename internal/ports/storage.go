// Package ports defines the interfaces (driven and driving ports)
// for pomo following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"
	"time"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

// TaskRepository defines the interface for task persistence.
// This is a driven port (implemented by adapters).
type TaskRepository interface {
	// Save persists a task to storage.
	Save(ctx context.Context, task *domain.Task) error

	// FindByID retrieves a task by its unique identifier.
	FindByID(ctx context.Context, id string) (*domain.Task, error)

	// FindAll retrieves all tasks, optionally filtered by status.
	FindAll(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error)

	// FindPending returns all tasks that are not completed or cancelled.
	FindPending(ctx context.Context) ([]*domain.Task, error)

	// FindActive returns the currently active task (in_progress), or nil.
	FindActive(ctx context.Context) (*domain.Task, error)

	// FindByTitle does a fuzzy search over task titles.
	FindByTitle(ctx context.Context, query string) ([]*domain.Task, error)

	// Delete removes a task from storage.
	Delete(ctx context.Context, id string) error

	// Update modifies an existing task.
	Update(ctx context.Context, task *domain.Task) error
}

// SessionRepository stores the history of finished and skipped intervals.
// This is a driven port (implemented by adapters).
type SessionRepository interface {
	// Save persists a session record.
	Save(ctx context.Context, record *domain.SessionRecord) error

	// FindRecent retrieves records that finished at or after since, newest first.
	FindRecent(ctx context.Context, since time.Time, limit int) ([]*domain.SessionRecord, error)

	// FindByTask retrieves all records credited to a task.
	FindByTask(ctx context.Context, taskID string) ([]*domain.SessionRecord, error)
}

// StatsRepository stores one DailyStat per calendar day.
// This is a driven port (implemented by adapters).
type StatsRepository interface {
	// GetDay returns the stat for date (YYYY-MM-DD) or domain.ErrRecordNotFound.
	GetDay(ctx context.Context, date string) (*domain.DailyStat, error)

	// Upsert creates or replaces the stat for its date.
	Upsert(ctx context.Context, stat domain.DailyStat) error

	// FindRange returns stats with from <= date <= to, oldest first.
	FindRange(ctx context.Context, from, to string) ([]domain.DailyStat, error)

	// All returns every stored stat, oldest first.
	All(ctx context.Context) ([]domain.DailyStat, error)
}

// KVStore holds independently readable and writable JSON records.
// This is a driven port (implemented by adapters).
type KVStore interface {
	// Get returns the raw record for key or domain.ErrRecordNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put creates or replaces the record for key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the record for key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// Storage is the combined repository interface.
// This is a driven port (implemented by adapters).
type Storage interface {
	// Tasks provides access to task operations.
	Tasks() TaskRepository

	// Sessions provides access to the session history.
	Sessions() SessionRepository

	// Stats provides access to daily statistics.
	Stats() StatsRepository

	// KV provides access to the key-value records.
	KV() KVStore

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}
