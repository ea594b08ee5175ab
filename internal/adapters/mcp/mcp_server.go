// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/ports"
)

const timeLayout = "2006-01-02T15:04:05"

var errNoTimer = errors.New("no timer is running in this process")

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server        *server.MCPServer
	stateProvider ports.MCPStateProvider
	timer         ports.TimerControl
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewServer creates a new MCP server instance. timer may be nil, in which
// case the timer control tools report an error and get_timer_state reads
// the persisted state.
func NewServer(stateProvider ports.MCPStateProvider, timer ports.TimerControl) *Server {
	s := &Server{
		stateProvider: stateProvider,
		timer:         timer,
	}

	s.server = server.NewMCPServer(
		"pomo",
		"1.0.0",
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"get_timer_state",
			mcp.WithDescription("Get the pomodoro timer state, the active task and today's stats"),
		),
		s.handleGetTimerState,
	)

	s.server.AddTool(
		mcp.NewTool("start_timer", mcp.WithDescription("Start or resume the countdown")),
		s.timerAction(func(t ports.TimerControl) { t.Start() }),
	)
	s.server.AddTool(
		mcp.NewTool("pause_timer", mcp.WithDescription("Pause the countdown")),
		s.timerAction(func(t ports.TimerControl) { t.Pause() }),
	)
	s.server.AddTool(
		mcp.NewTool("toggle_timer", mcp.WithDescription("Pause a running timer or start a paused one")),
		s.timerAction(func(t ports.TimerControl) { t.Toggle() }),
	)
	s.server.AddTool(
		mcp.NewTool("reset_timer", mcp.WithDescription("Rewind the current interval to its full length, paused")),
		s.timerAction(func(t ports.TimerControl) { t.Reset() }),
	)
	s.server.AddTool(
		mcp.NewTool("skip_session", mcp.WithDescription("Abandon the current interval and move to the next one, paused")),
		s.timerAction(func(t ports.TimerControl) { t.Skip() }),
	)

	s.server.AddTool(
		mcp.NewTool(
			"list_tasks",
			mcp.WithDescription("List all tasks, optionally filtered by status"),
			mcp.WithString(
				"status",
				mcp.Description("Filter tasks by status: pending, in_progress, completed, cancelled"),
				mcp.Enum("pending", "in_progress", "completed", "cancelled"),
			),
		),
		s.handleListTasks,
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_task_history",
			mcp.WithDescription("Get the pomodoros credited to a task"),
			mcp.WithString(
				"task_id",
				mcp.Required(),
				mcp.Description("The ID of the task to get history for"),
			),
		),
		s.handleGetTaskHistory,
	)

	s.server.AddTool(
		mcp.NewTool(
			"create_task",
			mcp.WithDescription("Create a new task"),
			mcp.WithString(
				"title",
				mcp.Required(),
				mcp.Description("The title of the task; #words become tags"),
			),
			mcp.WithString(
				"description",
				mcp.Description("Optional description of the task"),
			),
			mcp.WithString(
				"category",
				mcp.Description("Task category"),
				mcp.Enum(categoryNames()...),
			),
			mcp.WithNumber(
				"estimated_pomodoros",
				mcp.Description("Estimated pomodoros (default: 1)"),
			),
			mcp.WithArray(
				"tags",
				mcp.Description("Optional array of tags"),
				mcp.WithStringItems(),
			),
		),
		s.handleCreateTask,
	)

	s.server.AddTool(
		mcp.NewTool(
			"complete_task",
			mcp.WithDescription("Mark a task as completed"),
			mcp.WithString(
				"task_id",
				mcp.Required(),
				mcp.Description("The ID of the task to complete"),
			),
		),
		s.handleCompleteTask,
	)

	s.server.AddTool(
		mcp.NewTool(
			"set_active_task",
			mcp.WithDescription("Make a task the one completed pomodoros are credited to"),
			mcp.WithString(
				"task_id",
				mcp.Required(),
				mcp.Description("The ID of the task to activate"),
			),
		),
		s.handleSetActiveTask,
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_stats",
			mcp.WithDescription("Get lifetime totals, streaks and recent daily activity"),
			mcp.WithNumber(
				"days",
				mcp.Description("Number of recent days to include (default: 7)"),
			),
		),
		s.handleGetStats,
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_profile",
			mcp.WithDescription("Get the XP level, title and unlocked achievements"),
		),
		s.handleGetProfile,
	)
}

// Start begins serving MCP requests via stdio.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	return server.ServeStdio(s.server)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	if s.ctx == nil {
		return false
	}
	return s.ctx.Err() == nil
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

func categoryNames() []string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return names
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func timerData(st domain.TimerState, progress float64) map[string]interface{} {
	return map[string]interface{}{
		"mode":                string(st.Mode),
		"label":               domain.GetModeLabel(st.Mode),
		"time_remaining":      st.TimeRemaining,
		"remaining":           (time.Duration(st.TimeRemaining) * time.Second).String(),
		"is_running":          st.IsRunning,
		"completed_pomodoros": st.CompletedPomodoros,
		"current_session":     st.CurrentSession,
		"progress":            progress,
	}
}

func taskData(task *domain.Task) map[string]interface{} {
	data := map[string]interface{}{
		"id":                  task.ID,
		"title":               task.Title,
		"description":         task.Description,
		"category":            string(task.Category),
		"status":              string(task.Status),
		"tags":                task.Tags,
		"estimated_pomodoros": task.EstimatedPomodoros,
		"completed_pomodoros": task.CompletedPomodoros,
		"created_at":          task.CreatedAt.Format(timeLayout),
	}
	if task.CompletedAt != nil {
		data["completed_at"] = task.CompletedAt.Format(timeLayout)
	}
	return data
}

// handleGetTimerState handles the get_timer_state tool.
func (s *Server) handleGetTimerState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.stateProvider.GetCurrentState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current state: %w", err)
	}

	result := map[string]interface{}{
		"timer":       timerData(state.Timer, state.Progress),
		"active_task": nil,
		"today": map[string]interface{}{
			"completed_pomodoros": state.Today.CompletedPomodoros,
			"focus_minutes":       state.Today.FocusMinutes,
			"break_minutes":       state.Today.BreakMinutes,
			"tasks_completed":     state.Today.TasksCompleted,
		},
		"current_streak": state.Summary.CurrentStreak,
	}
	if state.ActiveTask != nil {
		result["active_task"] = taskData(state.ActiveTask)
	}

	return jsonResult(result)
}

// timerAction returns a handler that dispatches op to the timer and
// reports the resulting state.
func (s *Server) timerAction(op func(ports.TimerControl)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if s.timer == nil {
			return mcp.NewToolResultError(errNoTimer.Error()), nil
		}
		op(s.timer)
		return jsonResult(timerData(s.timer.Snapshot(), s.timer.Progress()))
	}
}

// handleListTasks handles the list_tasks tool.
func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var filter *domain.TaskStatus
	status := request.GetString("status", "")
	if status != "" {
		st := domain.TaskStatus(status)
		filter = &st
	}

	tasks, err := s.stateProvider.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	taskList := make([]map[string]interface{}, 0, len(tasks))
	for _, task := range tasks {
		taskList = append(taskList, taskData(task))
	}

	result := map[string]interface{}{
		"tasks":       taskList,
		"total_count": len(taskList),
	}
	if status != "" {
		result["filter_status"] = status
	}

	return jsonResult(result)
}

// handleGetTaskHistory handles the get_task_history tool.
func (s *Server) handleGetTaskHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id is required: " + err.Error()), nil
	}

	records, err := s.stateProvider.GetTaskHistory(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task history: %w", err)
	}

	sessionList := make([]map[string]interface{}, 0, len(records))
	var focus time.Duration
	for _, rec := range records {
		data := map[string]interface{}{
			"id":          rec.ID,
			"mode":        string(rec.Mode),
			"duration":    rec.Duration.String(),
			"skipped":     rec.Skipped,
			"finished_at": rec.FinishedAt.Format(timeLayout),
		}
		if rec.GitBranch != "" {
			data["git_branch"] = rec.GitBranch
		}
		sessionList = append(sessionList, data)

		if rec.Mode == domain.ModeWork && !rec.Skipped {
			focus += rec.Duration
		}
	}

	return jsonResult(map[string]interface{}{
		"task_id":          taskID,
		"sessions":         sessionList,
		"total_sessions":   len(sessionList),
		"total_focus_time": focus.String(),
	})
}

// handleCreateTask handles the create_task tool.
func (s *Server) handleCreateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required: " + err.Error()), nil
	}

	task, err := s.stateProvider.CreateTask(ctx,
		title,
		request.GetString("description", ""),
		request.GetString("category", ""),
		int(request.GetFloat("estimated_pomodoros", 0)),
		request.GetStringSlice("tags", nil),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create task: %v", err)), nil
	}

	return jsonResult(taskData(task))
}

// handleCompleteTask handles the complete_task tool.
func (s *Server) handleCompleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id is required: " + err.Error()), nil
	}

	task, err := s.stateProvider.CompleteTask(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete task: %v", err)), nil
	}

	return jsonResult(taskData(task))
}

// handleSetActiveTask handles the set_active_task tool.
func (s *Server) handleSetActiveTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id is required: " + err.Error()), nil
	}

	task, err := s.stateProvider.SetActiveTask(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set active task: %v", err)), nil
	}

	return jsonResult(taskData(task))
}

// handleGetStats handles the get_stats tool.
func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := int(request.GetFloat("days", 7))
	if days <= 0 {
		days = 7
	}

	summary, recent, err := s.stateProvider.GetStats(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return jsonResult(map[string]interface{}{
		"summary": summary,
		"days":    recent,
	})
}

// handleGetProfile handles the get_profile tool.
func (s *Server) handleGetProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile, unlocked, err := s.stateProvider.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	achievements := make([]map[string]interface{}, 0, len(unlocked))
	for _, a := range unlocked {
		achievements = append(achievements, map[string]interface{}{
			"id":   a.ID,
			"name": a.Name,
			"icon": a.Icon,
		})
	}

	return jsonResult(map[string]interface{}{
		"level":            profile.Level,
		"title":            profile.Title,
		"current_xp":       profile.CurrentXP,
		"xp_to_next_level": profile.XPToNextLevel,
		"total_xp":         profile.TotalXP,
		"achievements":     achievements,
	})
}
