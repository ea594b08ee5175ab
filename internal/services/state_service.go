package services

import (
	"context"
	"time"

	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

// StateService assembles read models for status output and the MCP server.
type StateService struct {
	storage      ports.Storage
	settings     *SettingsService
	stats        *StatsService
	taskService  *TaskService
	gamification *GamificationService
	timer        ports.TimerControl
}

// NewStateService creates a new state service.
func NewStateService(storage ports.Storage, settings *SettingsService, stats *StatsService) *StateService {
	return &StateService{storage: storage, settings: settings, stats: stats}
}

// SetTaskService sets the task service for write operations.
func (s *StateService) SetTaskService(taskService *TaskService) {
	s.taskService = taskService
}

// SetGamificationService sets the source of profile data.
func (s *StateService) SetGamificationService(g *GamificationService) {
	s.gamification = g
}

// SetTimer makes the state reflect a live timer instead of the persisted one.
func (s *StateService) SetTimer(t ports.TimerControl) {
	s.timer = t
}

// GetCurrentState implements ports.MCPStateProvider.
func (s *StateService) GetCurrentState(ctx context.Context) (*domain.CurrentState, error) {
	settings := s.settings.Current()

	var st domain.TimerState
	if s.timer != nil {
		st = s.timer.Snapshot()
	} else {
		st = LoadTimerState(ctx, s.storage, settings)
	}

	activeTask, err := s.storage.Tasks().FindActive(ctx)
	if err != nil {
		return nil, err
	}
	today, err := s.stats.Today(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := s.stats.Summary(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.CurrentState{
		Timer:      st,
		Progress:   st.Progress(settings),
		Settings:   settings,
		ActiveTask: activeTask,
		Today:      today,
		Summary:    summary,
	}, nil
}

// ListTasks implements ports.MCPStateProvider.
func (s *StateService) ListTasks(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error) {
	return s.storage.Tasks().FindAll(ctx, status)
}

// GetTaskHistory implements ports.MCPStateProvider.
func (s *StateService) GetTaskHistory(ctx context.Context, taskID string) ([]*domain.SessionRecord, error) {
	return s.storage.Sessions().FindByTask(ctx, taskID)
}

// GetRecentSessions implements ports.MCPStateProvider.
func (s *StateService) GetRecentSessions(ctx context.Context, limit int) ([]*domain.SessionRecord, error) {
	since := time.Now().AddDate(0, 0, -7)
	return s.storage.Sessions().FindRecent(ctx, since, limit)
}

// CreateTask implements ports.MCPStateProvider.
func (s *StateService) CreateTask(ctx context.Context, title, description, category string, estimate int, tags []string) (*domain.Task, error) {
	if s.taskService == nil {
		return nil, domain.ErrTaskNotFound
	}
	return s.taskService.AddTask(ctx, AddTaskRequest{
		Title:              title,
		Description:        description,
		Category:           category,
		EstimatedPomodoros: estimate,
		Tags:               tags,
	})
}

// CompleteTask implements ports.MCPStateProvider.
func (s *StateService) CompleteTask(ctx context.Context, taskID string) (*domain.Task, error) {
	if s.taskService == nil {
		return nil, domain.ErrTaskNotFound
	}
	if err := s.taskService.CompleteTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.storage.Tasks().FindByID(ctx, taskID)
}

// SetActiveTask implements ports.MCPStateProvider.
func (s *StateService) SetActiveTask(ctx context.Context, taskID string) (*domain.Task, error) {
	if s.taskService == nil {
		return nil, domain.ErrTaskNotFound
	}
	return s.taskService.SetActiveTask(ctx, taskID)
}

// GetStats implements ports.MCPStateProvider.
func (s *StateService) GetStats(ctx context.Context, days int) (domain.StatsSummary, []domain.DailyStat, error) {
	summary, err := s.stats.Summary(ctx)
	if err != nil {
		return domain.StatsSummary{}, nil, err
	}
	recent, err := s.stats.LastNDays(ctx, days)
	if err != nil {
		return domain.StatsSummary{}, nil, err
	}
	return summary, recent, nil
}

// GetProfile implements ports.MCPStateProvider.
func (s *StateService) GetProfile(ctx context.Context) (domain.PlayerProfile, []domain.Achievement, error) {
	if s.gamification == nil {
		return domain.NewPlayerProfile(time.Now()), nil, nil
	}
	profile, err := s.gamification.Profile(ctx)
	if err != nil {
		return domain.PlayerProfile{}, nil, err
	}
	unlocked, err := s.gamification.UnlockedAchievements(ctx)
	if err != nil {
		return domain.PlayerProfile{}, nil, err
	}
	return profile, unlocked, nil
}

// Ensure StateService implements MCPStateProvider.
var _ ports.MCPStateProvider = (*StateService)(nil)
