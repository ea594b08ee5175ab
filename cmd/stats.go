package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/xvierd/pomodoro-pro/internal/adapters/tui"
	"github.com/xvierd/pomodoro-pro/internal/domain"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a dashboard of focus statistics",
	Long: `Display lifetime totals, streaks and a chart of focus minutes for
the last N days.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}

		summary, days, err := app.state.GetStats(cmd.Context(), statsDays)
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"summary": summary,
				"days":    days,
			})
		}

		renderDashboard(cmd.OutOrStdout(), summary, days, tui.TerminalWidth(80))
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVarP(&statsDays, "days", "d", 7, "Number of days to chart")
	rootCmd.AddCommand(statsCmd)
}

func renderDashboard(w io.Writer, summary domain.StatsSummary, days []domain.DailyStat, width int) {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(app.theme().ColorLongBreak))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(app.theme().ColorPaused))
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(app.theme().ColorWork))

	fmt.Fprintf(w, "\n  %s\n", titleStyle.Render(fmt.Sprintf("Last %d days", len(days))))
	fmt.Fprintf(w, "  %s\n\n", dimStyle.Render(strings.Repeat("─", 40)))

	fmt.Fprintf(w, "  Total: %s pomodoros, %s focused, %s tasks done\n",
		valueStyle.Render(fmt.Sprintf("%d", summary.TotalPomodoros)),
		valueStyle.Render(formatMinutes(summary.TotalFocusMinutes)),
		valueStyle.Render(fmt.Sprintf("%d", summary.TotalTasksCompleted)),
	)
	fmt.Fprintf(w, "  Streak: %s (longest %d)  %s\n\n",
		valueStyle.Render(fmt.Sprintf("%dd", summary.CurrentStreak)),
		summary.LongestStreak,
		dimStyle.Render(fmt.Sprintf("%.1f sessions/day", summary.AverageSessionsPerDay)),
	)

	periodFocus, periodPomodoros := 0, 0
	for _, d := range days {
		periodFocus += d.FocusMinutes
		periodPomodoros += d.CompletedPomodoros
	}
	if periodPomodoros == 0 {
		fmt.Fprintf(w, "  %s\n\n", dimStyle.Render("No completed pomodoros in this period."))
		return
	}

	fmt.Fprintf(w, "  %s\n", dimStyle.Render(fmt.Sprintf("Focus minutes per day (%s in period)", formatMinutes(periodFocus))))
	fmt.Fprintln(w, focusChart(days, width))
	fmt.Fprintln(w)
}

// focusChart draws one bar of focus minutes per day.
func focusChart(days []domain.DailyStat, width int) string {
	chartWidth := width - 4
	if chartWidth > 100 {
		chartWidth = 100
	}
	chart := barchart.New(chartWidth, 12)

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(app.theme().ColorWork))
	bars := make([]barchart.BarData, 0, len(days))
	for _, d := range days {
		label := d.Date
		if t, err := time.ParseInLocation(domain.DayLayout, d.Date, time.Local); err == nil {
			label = t.Format("Mon 02")
			if len(days) > 14 {
				label = t.Format("02")
			}
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: "focus", Value: float64(d.FocusMinutes), Style: barStyle},
			},
		})
	}

	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}

// formatMinutes formats a minute count as "Xh Ym".
func formatMinutes(total int) string {
	hours, minutes := total/60, total%60
	if hours > 0 && minutes > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", minutes)
}
