package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

const taskColumns = `id, title, description, category, status, tags, estimated_pomodoros,
	completed_pomodoros, created_at, updated_at, completed_at`

// taskRepository implements ports.TaskRepository using SQLite.
type taskRepository struct {
	db *sql.DB
}

// newTaskRepository creates a new task repository.
func newTaskRepository(db *sql.DB) ports.TaskRepository {
	return &taskRepository{db: db}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Save persists a task to storage.
func (r *taskRepository) Save(ctx context.Context, task *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Category),
		string(task.Status),
		strings.Join(task.Tags, ","),
		task.EstimatedPomodoros,
		task.CompletedPomodoros,
		task.CreatedAt,
		task.UpdatedAt,
		task.CompletedAt,
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("task %s already exists: %w", task.ID, domain.ErrInvalidTaskID)
	}
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	return nil
}

// FindByID retrieves a task by its unique identifier.
func (r *taskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// FindAll retrieves all tasks, optionally filtered by status.
func (r *taskRepository) FindAll(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	var args []any

	if status != nil {
		query = `SELECT ` + taskColumns + ` FROM tasks WHERE status = ? ORDER BY created_at DESC`
		args = append(args, string(*status))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// FindPending returns all open tasks, the active one first.
func (r *taskRepository) FindPending(ctx context.Context) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status NOT IN (?, ?)
		ORDER BY
			CASE status
				WHEN 'in_progress' THEN 0
				WHEN 'pending' THEN 1
				ELSE 2
			END,
			updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, string(domain.StatusCompleted), string(domain.StatusCancelled))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// FindActive returns the currently active task (in_progress), or nil.
func (r *taskRepository) FindActive(ctx context.Context) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status = ?
		ORDER BY updated_at DESC
		LIMIT 1
	`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, string(domain.StatusInProgress)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active task: %w", err)
	}

	return task, nil
}

// FindByTitle does a fuzzy search for open tasks by title, best match first.
func (r *taskRepository) FindByTitle(ctx context.Context, query string) ([]*domain.Task, error) {
	tasks, err := r.FindPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks for fuzzy search: %w", err)
	}

	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}

	var result []*domain.Task
	for _, match := range fuzzy.Find(query, titles) {
		result = append(result, tasks[match.Index])
	}

	return result, nil
}

// Delete removes a task from storage.
func (r *taskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// Update modifies an existing task.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, category = ?, status = ?, tags = ?,
			estimated_pomodoros = ?, completed_pomodoros = ?, updated_at = ?, completed_at = ?
		WHERE id = ?
	`

	task.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(task.Category),
		string(task.Status),
		strings.Join(task.Tags, ","),
		task.EstimatedPomodoros,
		task.CompletedPomodoros,
		task.UpdatedAt,
		task.CompletedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var tagsStr string
	var completedAt sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Status,
		&tagsStr,
		&task.EstimatedPomodoros,
		&task.CompletedPomodoros,
		&task.CreatedAt,
		&task.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}

	// Initialize tags as empty slice to avoid null in JSON
	task.Tags = []string{}
	if tagsStr != "" {
		task.Tags = strings.Split(tagsStr, ",")
	}

	return &task, nil
}

// scanTasks scans multiple task rows.
func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}
