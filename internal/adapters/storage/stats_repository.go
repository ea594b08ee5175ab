package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

const statColumns = `date, completed_pomodoros, focus_minutes, break_minutes, tasks_completed, sessions_completed`

// statsRepository implements ports.StatsRepository using SQLite.
type statsRepository struct {
	db *sql.DB
}

func newStatsRepository(db *sql.DB) ports.StatsRepository {
	return &statsRepository{db: db}
}

// GetDay returns the stat for date or domain.ErrRecordNotFound.
func (r *statsRepository) GetDay(ctx context.Context, date string) (*domain.DailyStat, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+statColumns+` FROM daily_stats WHERE date = ?`, date)

	stat, err := scanStat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stat: %w", err)
	}
	return &stat, nil
}

// Upsert creates or replaces the stat for its date.
func (r *statsRepository) Upsert(ctx context.Context, stat domain.DailyStat) error {
	query := `
		INSERT INTO daily_stats (` + statColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			completed_pomodoros = excluded.completed_pomodoros,
			focus_minutes = excluded.focus_minutes,
			break_minutes = excluded.break_minutes,
			tasks_completed = excluded.tasks_completed,
			sessions_completed = excluded.sessions_completed
	`

	_, err := r.db.ExecContext(ctx, query,
		stat.Date,
		stat.CompletedPomodoros,
		stat.FocusMinutes,
		stat.BreakMinutes,
		stat.TasksCompleted,
		stat.SessionsCompleted,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily stat: %w", err)
	}
	return nil
}

// FindRange returns stats with from <= date <= to, oldest first.
func (r *statsRepository) FindRange(ctx context.Context, from, to string) ([]domain.DailyStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+statColumns+` FROM daily_stats WHERE date >= ? AND date <= ? ORDER BY date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanStats(rows)
}

// All returns every stored stat, oldest first.
func (r *statsRepository) All(ctx context.Context) ([]domain.DailyStat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+statColumns+` FROM daily_stats ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanStats(rows)
}

func scanStat(row rowScanner) (domain.DailyStat, error) {
	var s domain.DailyStat
	err := row.Scan(
		&s.Date,
		&s.CompletedPomodoros,
		&s.FocusMinutes,
		&s.BreakMinutes,
		&s.TasksCompleted,
		&s.SessionsCompleted,
	)
	return s, err
}

func scanStats(rows *sql.Rows) ([]domain.DailyStat, error) {
	var stats []domain.DailyStat
	for rows.Next() {
		s, err := scanStat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
