package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xvierd/pomodoro-pro/internal/adapters/tui"
	"github.com/xvierd/pomodoro-pro/internal/domain"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current status",
	Long:  `Display the saved timer state, the active task and today's statistics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// No controller runs here, so the timer shown is the saved one the
		// next run resumes from.
		state, err := app.state.GetCurrentState(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get current state: %w", err)
		}

		if jsonOutput {
			return outputStatusJSON(cmd.OutOrStdout(), state)
		}

		tui.ShowStatus(cmd.OutOrStdout(), state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// outputStatusJSON outputs the status in JSON format
func outputStatusJSON(w io.Writer, state *domain.CurrentState) error {
	result := map[string]interface{}{
		"timer": map[string]interface{}{
			"mode":                string(state.Timer.Mode),
			"time_remaining":      state.Timer.TimeRemaining,
			"is_running":          state.Timer.IsRunning,
			"completed_pomodoros": state.Timer.CompletedPomodoros,
			"current_session":     state.Timer.CurrentSession,
			"progress":            state.Progress,
		},
		"active_task": nil,
		"today": map[string]interface{}{
			"completed_pomodoros": state.Today.CompletedPomodoros,
			"focus_minutes":       state.Today.FocusMinutes,
			"break_minutes":       state.Today.BreakMinutes,
			"tasks_completed":     state.Today.TasksCompleted,
		},
		"streak": map[string]interface{}{
			"current": state.Summary.CurrentStreak,
			"longest": state.Summary.LongestStreak,
		},
	}

	if state.ActiveTask != nil {
		result["active_task"] = taskJSON(state.ActiveTask)
	}

	return writeJSON(w, result)
}

// taskJSON is the JSON shape of a task shared by status and task commands.
func taskJSON(task *domain.Task) map[string]interface{} {
	return map[string]interface{}{
		"id":                  task.ID,
		"title":               task.Title,
		"description":         task.Description,
		"category":            string(task.Category),
		"status":              string(task.Status),
		"tags":                task.Tags,
		"estimated_pomodoros": task.EstimatedPomodoros,
		"completed_pomodoros": task.CompletedPomodoros,
		"created_at":          task.CreatedAt.Format("2006-01-02T15:04:05"),
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(w, string(jsonData))
	return nil
}
