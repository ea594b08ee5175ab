// Package services implements the application layer (use cases)
// following hexagonal architecture principles.
package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

// TaskService handles task-related use cases.
type TaskService struct {
	storage      ports.Storage
	stats        *StatsService
	gamification *GamificationService
}

// NewTaskService creates a new task service.
func NewTaskService(storage ports.Storage) *TaskService {
	return &TaskService{storage: storage}
}

// SetStatsService makes task completions count towards daily stats.
func (s *TaskService) SetStatsService(stats *StatsService) {
	s.stats = stats
}

// SetGamificationService makes task completions re-check achievements.
func (s *TaskService) SetGamificationService(g *GamificationService) {
	s.gamification = g
}

// AddTaskRequest contains the data needed to create a new task.
type AddTaskRequest struct {
	Title              string
	Description        string
	Category           string
	EstimatedPomodoros int
	Tags               []string
}

// AddTask creates a new task. "#tag" words in the title become tags.
func (s *TaskService) AddTask(ctx context.Context, req AddTaskRequest) (*domain.Task, error) {
	title, titleTags := domain.ParseTitleTags(req.Title)
	task, err := domain.NewTask(title)
	if err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}
	task.Category = category
	task.Description = strings.TrimSpace(req.Description)

	if req.EstimatedPomodoros != 0 {
		if err := task.SetEstimate(req.EstimatedPomodoros); err != nil {
			return nil, fmt.Errorf("invalid task: %w", err)
		}
	}
	for _, tag := range append(titleTags, req.Tags...) {
		task.AddTag(tag)
	}

	if err := s.storage.Tasks().Save(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	return task, nil
}

// ListTasksRequest contains filters for listing tasks.
type ListTasksRequest struct {
	Status      *domain.TaskStatus
	OnlyPending bool
}

// ListTasks retrieves tasks based on filters.
func (s *TaskService) ListTasks(ctx context.Context, req ListTasksRequest) ([]*domain.Task, error) {
	if req.OnlyPending {
		return s.storage.Tasks().FindPending(ctx)
	}
	return s.storage.Tasks().FindAll(ctx, req.Status)
}

// GetTask retrieves a single task by ID.
func (s *TaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.storage.Tasks().FindByID(ctx, id)
}

// ResolveTask finds a task by exact ID, then by ID prefix or fuzzy title
// match among open tasks.
func (s *TaskService) ResolveTask(ctx context.Context, ref string) (*domain.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrInvalidTaskID
	}
	if task, err := s.storage.Tasks().FindByID(ctx, ref); err == nil {
		return task, nil
	}

	pending, err := s.storage.Tasks().FindPending(ctx)
	if err != nil {
		return nil, err
	}
	for _, task := range pending {
		if len(ref) >= 4 && strings.HasPrefix(task.ID, ref) {
			return task, nil
		}
	}

	matches, err := s.storage.Tasks().FindByTitle(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return matches[0], nil
}

// ActiveTask returns the task pomodoros are credited to, or nil.
func (s *TaskService) ActiveTask(ctx context.Context) (*domain.Task, error) {
	return s.storage.Tasks().FindActive(ctx)
}

// SetActiveTask makes id the active task. Any other active task goes back
// to pending so at most one task is active.
func (s *TaskService) SetActiveTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.storage.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if !task.IsOpen() {
		return nil, fmt.Errorf("cannot activate a %s task: %w", task.Status, domain.ErrTaskNotActive)
	}

	inProgress := domain.StatusInProgress
	active, err := s.storage.Tasks().FindAll(ctx, &inProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to find active tasks: %w", err)
	}
	for _, other := range active {
		if other.ID == task.ID {
			continue
		}
		other.Pause()
		if err := s.storage.Tasks().Update(ctx, other); err != nil {
			return nil, fmt.Errorf("failed to deactivate task: %w", err)
		}
	}

	task.Start()
	if err := s.storage.Tasks().Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to activate task: %w", err)
	}
	return task, nil
}

// ClearActiveTask returns the active task, if any, to pending.
func (s *TaskService) ClearActiveTask(ctx context.Context) error {
	task, err := s.storage.Tasks().FindActive(ctx)
	if err != nil || task == nil {
		return err
	}
	task.Pause()
	return s.storage.Tasks().Update(ctx, task)
}

// IncrementActive credits one pomodoro to the active task. It returns the
// updated task, or nil when no task is active.
func (s *TaskService) IncrementActive(ctx context.Context) (*domain.Task, error) {
	task, err := s.storage.Tasks().FindActive(ctx)
	if err != nil || task == nil {
		return nil, err
	}
	task.IncrementPomodoro()
	if err := s.storage.Tasks().Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to credit pomodoro: %w", err)
	}
	return task, nil
}

// CompleteTask marks a task as completed and counts it in today's stats.
func (s *TaskService) CompleteTask(ctx context.Context, id string) error {
	task, err := s.storage.Tasks().FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find task: %w", err)
	}
	if task.Status == domain.StatusCompleted {
		return nil
	}

	// Count it first: a failed count leaves the task open to retry.
	var summary domain.StatsSummary
	if s.stats != nil {
		if summary, err = s.stats.RecordTaskComplete(ctx); err != nil {
			return fmt.Errorf("failed to record task completion: %w", err)
		}
	}

	task.Complete()
	if err := s.storage.Tasks().Update(ctx, task); err != nil {
		return err
	}

	if s.stats == nil || s.gamification == nil {
		return nil
	}
	today, err := s.stats.Today(ctx)
	if err != nil {
		log.Printf("gamification: load today: %v", err)
		return nil
	}
	if err := s.gamification.Refresh(ctx, summary, today); err != nil {
		log.Printf("gamification: %v", err)
	}
	return nil
}

// DeleteTask removes a task. Deleting the active task leaves no task active.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.storage.Tasks().Delete(ctx, id)
}

// TaskHistory returns the intervals credited to a task.
func (s *TaskService) TaskHistory(ctx context.Context, id string) ([]*domain.SessionRecord, error) {
	return s.storage.Sessions().FindByTask(ctx, id)
}
