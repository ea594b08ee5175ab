package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

var (
	historyDays  int
	historyLimit int
	historyTask  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sessions",
	Long: `List finished and skipped sessions, newest first. With --task, list
every session credited to that task instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var records []*domain.SessionRecord
		var err error
		if historyTask != "" {
			task, rerr := app.tasks.ResolveTask(ctx, historyTask)
			if rerr != nil {
				return fmt.Errorf("failed to find task: %w", rerr)
			}
			records, err = app.tasks.TaskHistory(ctx, task.ID)
		} else {
			since := time.Now().AddDate(0, 0, -historyDays)
			records, err = app.storage.Sessions().FindRecent(ctx, since, historyLimit)
		}
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}

		if jsonOutput {
			list := make([]map[string]interface{}, 0, len(records))
			for _, r := range records {
				list = append(list, sessionJSON(r))
			}
			return writeJSON(cmd.OutOrStdout(), list)
		}

		printHistory(cmd.OutOrStdout(), records)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "How many days back to look")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Maximum number of sessions")
	historyCmd.Flags().StringVarP(&historyTask, "task", "t", "", "Only sessions credited to this task")
	rootCmd.AddCommand(historyCmd)
}

func sessionJSON(r *domain.SessionRecord) map[string]interface{} {
	data := map[string]interface{}{
		"id":          r.ID,
		"mode":        string(r.Mode),
		"minutes":     int(r.Duration.Minutes()),
		"skipped":     r.Skipped,
		"git_branch":  r.GitBranch,
		"finished_at": r.FinishedAt.Format(time.RFC3339),
	}
	if r.TaskID != nil {
		data["task_id"] = *r.TaskID
	}
	return data
}

func printHistory(w io.Writer, records []*domain.SessionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No sessions yet.")
		return
	}

	fmt.Fprintf(w, "🕒 Sessions (%d):\n\n", len(records))
	for _, r := range records {
		icon := "🍅"
		if r.Mode.IsBreak() {
			icon = "☕"
		}
		status := ""
		if r.Skipped {
			status = " (skipped)"
		}
		line := fmt.Sprintf("%s %s  %-11s %s%s", icon, r.FinishedAt.Format("Jan 02 15:04"),
			domain.GetModeLabel(r.Mode), formatMinutes(int(r.Duration.Minutes())), status)
		if r.GitBranch != "" {
			line += "  ⎇ " + r.GitBranch
		}
		fmt.Fprintln(w, line)
	}
}
