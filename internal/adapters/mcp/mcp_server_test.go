package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
	"github.com/xvierd/pomodoro-pro/internal/timer"
)

// mockStateProvider is a mock implementation of ports.MCPStateProvider for testing.
type mockStateProvider struct {
	currentState *domain.CurrentState
	tasks        []*domain.Task
	taskHistory  map[string][]*domain.SessionRecord
	lastStatus   *domain.TaskStatus
	created      []string
	statsDays    int
}

func (m *mockStateProvider) GetCurrentState(ctx context.Context) (*domain.CurrentState, error) {
	return m.currentState, nil
}

func (m *mockStateProvider) ListTasks(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error) {
	m.lastStatus = status
	return m.tasks, nil
}

func (m *mockStateProvider) GetTaskHistory(ctx context.Context, taskID string) ([]*domain.SessionRecord, error) {
	return m.taskHistory[taskID], nil
}

func (m *mockStateProvider) GetRecentSessions(ctx context.Context, limit int) ([]*domain.SessionRecord, error) {
	return nil, nil
}

func (m *mockStateProvider) CreateTask(ctx context.Context, title, description, category string, estimate int, tags []string) (*domain.Task, error) {
	task, err := domain.NewTask(title)
	if err != nil {
		return nil, err
	}
	task.Description = description
	task.Tags = tags
	if estimate > 0 {
		task.EstimatedPomodoros = estimate
	}
	m.created = append(m.created, title)
	return task, nil
}

func (m *mockStateProvider) CompleteTask(ctx context.Context, taskID string) (*domain.Task, error) {
	for _, t := range m.tasks {
		if t.ID == taskID {
			t.Complete()
			return t, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (m *mockStateProvider) SetActiveTask(ctx context.Context, taskID string) (*domain.Task, error) {
	for _, t := range m.tasks {
		if t.ID == taskID {
			t.Start()
			return t, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (m *mockStateProvider) GetStats(ctx context.Context, days int) (domain.StatsSummary, []domain.DailyStat, error) {
	m.statsDays = days
	return domain.StatsSummary{TotalPomodoros: 7, CurrentStreak: 2}, make([]domain.DailyStat, days), nil
}

func (m *mockStateProvider) GetProfile(ctx context.Context) (domain.PlayerProfile, []domain.Achievement, error) {
	return domain.NewPlayerProfile(time.Now()), domain.DefaultAchievements()[:1], nil
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func decode(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotNil(t, result)
	require.False(t, result.IsError, "unexpected tool error")
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func newTestTimer(t *testing.T) *timer.Controller {
	t.Helper()
	s := domain.DefaultSettings()
	c := timer.New(timer.StaticSettings(s), domain.NewTimerState(s), timer.Config{TickInterval: time.Hour})
	t.Cleanup(c.Close)
	return c
}

func TestNewServer(t *testing.T) {
	mock := &mockStateProvider{}
	server := NewServer(mock, nil)

	require.NotNil(t, server)
	assert.Equal(t, mock, server.stateProvider)
	assert.NotNil(t, server.server)
	assert.False(t, server.IsRunning(), "IsRunning() should return false before Start()")
}

func TestServer_handleGetTimerState(t *testing.T) {
	task, _ := domain.NewTask("Write docs")
	mock := &mockStateProvider{
		currentState: &domain.CurrentState{
			Timer:      domain.TimerState{Mode: domain.ModeBreak, TimeRemaining: 120, CompletedPomodoros: 1, CurrentSession: 2},
			Progress:   60,
			ActiveTask: task,
			Today:      domain.DailyStat{CompletedPomodoros: 1, FocusMinutes: 25},
		},
	}

	server := NewServer(mock, nil)
	result, err := server.handleGetTimerState(context.Background(), callRequest(nil))
	require.NoError(t, err)

	out := decode(t, result)
	tm := out["timer"].(map[string]any)
	assert.Equal(t, "break", tm["mode"])
	assert.Equal(t, "Short Break", tm["label"])
	assert.Equal(t, float64(120), tm["time_remaining"])
	assert.Equal(t, "Write docs", out["active_task"].(map[string]any)["title"])
	assert.Equal(t, float64(25), out["today"].(map[string]any)["focus_minutes"])
}

func TestServer_TimerActions(t *testing.T) {
	ctrl := newTestTimer(t)
	server := NewServer(&mockStateProvider{}, ctrl)
	ctx := context.Background()

	tests := []struct {
		name        string
		op          func(ports.TimerControl)
		wantRunning bool
		wantMode    string
		wantLeft    float64
	}{
		{name: "start", op: func(tc ports.TimerControl) { tc.Start() }, wantRunning: true, wantMode: "work", wantLeft: 1500},
		{name: "toggle pauses", op: func(tc ports.TimerControl) { tc.Toggle() }, wantRunning: false, wantMode: "work", wantLeft: 1500},
		{name: "skip", op: func(tc ports.TimerControl) { tc.Skip() }, wantRunning: false, wantMode: "break", wantLeft: 300},
		{name: "reset", op: func(tc ports.TimerControl) { tc.Reset() }, wantRunning: false, wantMode: "break", wantLeft: 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.timerAction(tt.op)(ctx, callRequest(nil))
			require.NoError(t, err)
			out := decode(t, result)
			assert.Equal(t, tt.wantRunning, out["is_running"])
			assert.Equal(t, tt.wantMode, out["mode"])
			assert.Equal(t, tt.wantLeft, out["time_remaining"])
		})
	}
}

func TestServer_TimerActionsWithoutTimer(t *testing.T) {
	server := NewServer(&mockStateProvider{}, nil)

	result, err := server.timerAction(func(tc ports.TimerControl) { tc.Start() })(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_handleListTasks(t *testing.T) {
	task1, _ := domain.NewTask("Task 1")
	task2, _ := domain.NewTask("Task 2")
	mock := &mockStateProvider{tasks: []*domain.Task{task1, task2}}
	server := NewServer(mock, nil)

	result, err := server.handleListTasks(context.Background(), callRequest(map[string]any{"status": "pending"}))
	require.NoError(t, err)

	out := decode(t, result)
	assert.Equal(t, float64(2), out["total_count"])
	assert.Equal(t, "pending", out["filter_status"])
	require.NotNil(t, mock.lastStatus)
	assert.Equal(t, domain.StatusPending, *mock.lastStatus)
}

func TestServer_handleCreateTask(t *testing.T) {
	mock := &mockStateProvider{}
	server := NewServer(mock, nil)
	ctx := context.Background()

	result, err := server.handleCreateTask(ctx, callRequest(map[string]any{
		"title":               "Review PR",
		"description":         "the big one",
		"estimated_pomodoros": float64(3),
		"tags":                []any{"review", "urgent"},
	}))
	require.NoError(t, err)

	out := decode(t, result)
	assert.Equal(t, "Review PR", out["title"])
	assert.Equal(t, float64(3), out["estimated_pomodoros"])
	assert.Equal(t, []any{"review", "urgent"}, out["tags"])

	result, err = server.handleCreateTask(ctx, callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "missing title must be a tool error")
}

func TestServer_TaskMutations(t *testing.T) {
	task, _ := domain.NewTask("Focus")
	mock := &mockStateProvider{tasks: []*domain.Task{task}}
	server := NewServer(mock, nil)
	ctx := context.Background()

	result, err := server.handleSetActiveTask(ctx, callRequest(map[string]any{"task_id": task.ID}))
	require.NoError(t, err)
	assert.Equal(t, "in_progress", decode(t, result)["status"])

	result, err = server.handleCompleteTask(ctx, callRequest(map[string]any{"task_id": task.ID}))
	require.NoError(t, err)
	out := decode(t, result)
	assert.Equal(t, "completed", out["status"])
	assert.Contains(t, out, "completed_at")

	result, err = server.handleCompleteTask(ctx, callRequest(map[string]any{"task_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_handleGetTaskHistory(t *testing.T) {
	taskID := "task-1"
	work := domain.NewSessionRecord(domain.ModeWork, 25, false, time.Now())
	work.TaskID = &taskID
	work.GitBranch = "main"
	skipped := domain.NewSessionRecord(domain.ModeWork, 25, true, time.Now())
	skipped.TaskID = &taskID

	mock := &mockStateProvider{taskHistory: map[string][]*domain.SessionRecord{taskID: {work, skipped}}}
	server := NewServer(mock, nil)

	result, err := server.handleGetTaskHistory(context.Background(), callRequest(map[string]any{"task_id": taskID}))
	require.NoError(t, err)

	out := decode(t, result)
	assert.Equal(t, float64(2), out["total_sessions"])
	assert.Equal(t, "25m0s", out["total_focus_time"])
}

func TestServer_handleGetStats(t *testing.T) {
	mock := &mockStateProvider{}
	server := NewServer(mock, nil)

	result, err := server.handleGetStats(context.Background(), callRequest(map[string]any{"days": float64(14)}))
	require.NoError(t, err)

	out := decode(t, result)
	assert.Equal(t, 14, mock.statsDays)
	assert.Len(t, out["days"], 14)
	assert.Equal(t, float64(7), out["summary"].(map[string]any)["totalPomodoros"])

	_, err = server.handleGetStats(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, 7, mock.statsDays)
}

func TestServer_handleGetProfile(t *testing.T) {
	server := NewServer(&mockStateProvider{}, nil)

	result, err := server.handleGetProfile(context.Background(), callRequest(nil))
	require.NoError(t, err)

	out := decode(t, result)
	assert.Equal(t, float64(1), out["level"])
	assert.Equal(t, "Beginner", out["title"])
	assert.Len(t, out["achievements"], 1)
}
