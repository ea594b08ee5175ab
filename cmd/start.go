package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xvierd/pomodoro-pro/internal/adapters/tui"
)

var startTask string

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start [task]",
	Short: "Open the timer and start counting down",
	Long: `Open the timer with the countdown already running. A task can be
given by ID, ID prefix or title; it becomes the active task and is credited
with every pomodoro finished while it stays active.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := startTask
		if ref == "" && len(args) > 0 {
			ref = args[0]
		}
		if ref != "" {
			task, err := app.tasks.ResolveTask(cmd.Context(), ref)
			if err != nil {
				return fmt.Errorf("failed to find task: %w", err)
			}
			if _, err := app.tasks.SetActiveTask(cmd.Context(), task.ID); err != nil {
				return fmt.Errorf("failed to activate task: %w", err)
			}
		}
		return runTimer(cmd, true)
	},
}

func init() {
	startCmd.Flags().StringVarP(&startTask, "task", "t", "", "Task to work on (ID, ID prefix or title)")
	rootCmd.AddCommand(startCmd)
}

// runTimer hosts a controller for the lifetime of the TUI. The final timer
// state is saved on exit so the next run resumes where this one stopped.
func runTimer(cmd *cobra.Command, autoStart bool) error {
	ctx, cancel := setupSignalHandler(cmd.Context())
	defer cancel()

	c := newController(ctx)
	defer closeController(c)

	if autoStart {
		c.Start()
	}

	view := tui.NewView(c, currentStateFunc(ctx), &app.config.Theme)
	return view.Run(ctx)
}
