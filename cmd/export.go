package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/xvierd/pomodoro-pro/internal/domain"
)

var (
	exportFormat string
	exportDays   int
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export session history and statistics",
	Long: `Export your data. CSV writes one row per session; JSON writes the
summary, daily statistics, sessions and tasks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOutput, err)
			}
			defer f.Close()
			w = f
		}
		return runExport(cmd.Context(), w)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Output format: csv or json")
	exportCmd.Flags().IntVar(&exportDays, "days", 0, "Only the last N days (0 exports everything)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(ctx context.Context, w io.Writer) error {
	var since time.Time
	if exportDays > 0 {
		since = time.Now().AddDate(0, 0, -exportDays)
	}

	sessions, err := app.storage.Sessions().FindRecent(ctx, since, 0)
	if err != nil {
		return fmt.Errorf("failed to fetch sessions: %w", err)
	}
	tasks, err := app.storage.Tasks().FindAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}

	switch exportFormat {
	case "csv":
		return exportCSV(w, sessions, tasks)
	case "json":
		return exportJSON(ctx, w, since, sessions, tasks)
	default:
		return fmt.Errorf("unknown format %q (use csv or json)", exportFormat)
	}
}

func exportCSV(out io.Writer, sessions []*domain.SessionRecord, tasks []*domain.Task) error {
	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	w := csv.NewWriter(out)
	_ = w.Write([]string{"finished_at", "mode", "minutes", "skipped", "task_id", "task", "git_branch"})

	for _, s := range sessions {
		taskID := ""
		if s.TaskID != nil {
			taskID = *s.TaskID
		}
		_ = w.Write([]string{
			s.FinishedAt.Format(time.RFC3339),
			string(s.Mode),
			strconv.Itoa(int(s.Duration.Minutes())),
			strconv.FormatBool(s.Skipped),
			taskID,
			titles[taskID],
			s.GitBranch,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func exportJSON(ctx context.Context, w io.Writer, since time.Time, sessions []*domain.SessionRecord, tasks []*domain.Task) error {
	summary, err := app.stats.Summary(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch summary: %w", err)
	}
	days, err := app.stats.History(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch daily stats: %w", err)
	}
	if !since.IsZero() {
		from := domain.DayKey(since)
		kept := days[:0]
		for _, d := range days {
			if d.Date >= from {
				kept = append(kept, d)
			}
		}
		days = kept
	}

	sessionList := make([]map[string]interface{}, 0, len(sessions))
	for _, s := range sessions {
		sessionList = append(sessionList, sessionJSON(s))
	}
	taskList := make([]map[string]interface{}, 0, len(tasks))
	for _, t := range tasks {
		taskList = append(taskList, taskJSON(t))
	}

	return writeJSON(w, map[string]interface{}{
		"exported_at": time.Now().Format(time.RFC3339),
		"summary":     summary,
		"daily_stats": days,
		"sessions":    sessionList,
		"tasks":       taskList,
	})
}
