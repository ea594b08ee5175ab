package ports

import (
	"context"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
// This is a driving port (called by the application layer).
type MCPHandler interface {
	// Start begins serving MCP requests and blocks until ctx is done or the
	// client disconnects.
	Start(ctx context.Context) error

	// IsRunning returns true if the server is active.
	IsRunning() bool
}

// MCPStateProvider provides state and task operations to the MCP server.
// This is a driven port (implemented by the services layer).
type MCPStateProvider interface {
	// GetCurrentState returns the timer, active task and today's stats.
	GetCurrentState(ctx context.Context) (*domain.CurrentState, error)

	// ListTasks returns all tasks, optionally filtered.
	ListTasks(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error)

	// GetTaskHistory returns the intervals credited to a task.
	GetTaskHistory(ctx context.Context, taskID string) ([]*domain.SessionRecord, error)

	// GetRecentSessions returns up to limit recent intervals.
	GetRecentSessions(ctx context.Context, limit int) ([]*domain.SessionRecord, error)

	// CreateTask adds a task.
	CreateTask(ctx context.Context, title, description, category string, estimate int, tags []string) (*domain.Task, error)

	// CompleteTask marks a task as completed.
	CompleteTask(ctx context.Context, taskID string) (*domain.Task, error)

	// SetActiveTask makes a task the one pomodoros are credited to.
	SetActiveTask(ctx context.Context, taskID string) (*domain.Task, error)

	// GetStats returns the summary and the last days of activity.
	GetStats(ctx context.Context, days int) (domain.StatsSummary, []domain.DailyStat, error)

	// GetProfile returns the XP profile and unlocked achievements.
	GetProfile(ctx context.Context) (domain.PlayerProfile, []domain.Achievement, error)
}
