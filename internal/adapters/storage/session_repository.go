package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

// sessionRepository implements ports.SessionRepository using SQLite.
type sessionRepository struct {
	db *sql.DB
}

// newSessionRepository creates a new session repository.
func newSessionRepository(db *sql.DB) ports.SessionRepository {
	return &sessionRepository{db: db}
}

// Save persists a session record.
func (r *sessionRepository) Save(ctx context.Context, record *domain.SessionRecord) error {
	query := `
		INSERT INTO sessions (id, task_id, mode, duration_ms, skipped, git_branch, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.TaskID,
		string(record.Mode),
		record.Duration.Milliseconds(),
		record.Skipped,
		record.GitBranch,
		record.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// FindRecent retrieves records that finished at or after since, newest first.
// A non-positive limit returns every match.
func (r *sessionRepository) FindRecent(ctx context.Context, since time.Time, limit int) ([]*domain.SessionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, task_id, mode, duration_ms, skipped, git_branch, finished_at
		FROM sessions
		WHERE finished_at >= ?
		ORDER BY finished_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanSessions(rows)
}

// FindByTask retrieves all records credited to a task, newest first.
func (r *sessionRepository) FindByTask(ctx context.Context, taskID string) ([]*domain.SessionRecord, error) {
	query := `
		SELECT id, task_id, mode, duration_ms, skipped, git_branch, finished_at
		FROM sessions
		WHERE task_id = ?
		ORDER BY finished_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanSessions(rows)
}

func (r *sessionRepository) scanSessions(rows *sql.Rows) ([]*domain.SessionRecord, error) {
	var records []*domain.SessionRecord

	for rows.Next() {
		var rec domain.SessionRecord
		var taskID sql.NullString
		var durationMs int64

		err := rows.Scan(
			&rec.ID,
			&taskID,
			&rec.Mode,
			&durationMs,
			&rec.Skipped,
			&rec.GitBranch,
			&rec.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if taskID.Valid {
			id := taskID.String
			rec.TaskID = &id
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond

		records = append(records, &rec)
	}

	return records, rows.Err()
}
