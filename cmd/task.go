package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/services"
)

var (
	addDescription string
	addCategory    string
	addEstimate    int
	addTags        string

	listStatus string
	listAll    bool
)

// taskCmd groups the task subcommands.
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long: `Create, list and complete tasks. The active task is credited with
every pomodoro that finishes while it is active.`,
}

var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task. Words starting with # in the title become tags.
Without a title, an interactive form asks for the details.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := services.AddTaskRequest{
			Title:              strings.Join(args, " "),
			Description:        addDescription,
			Category:           addCategory,
			EstimatedPomodoros: addEstimate,
			Tags:               splitTags(addTags),
		}

		if req.Title == "" {
			if !isInteractive() {
				return domain.ErrEmptyTaskTitle
			}
			if err := promptTask(&req); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}
		}

		task, err := app.tasks.AddTask(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), taskJSON(task))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Task added: %s (ID: %s)\n", task.Title, shortID(task.ID))
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long:  `List open tasks, all tasks, or tasks with one status.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := services.ListTasksRequest{
			OnlyPending: !listAll && listStatus == "",
		}
		if listStatus != "" {
			status := domain.TaskStatus(listStatus)
			req.Status = &status
		}

		tasks, err := app.tasks.ListTasks(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if jsonOutput {
			list := make([]map[string]interface{}, 0, len(tasks))
			for _, task := range tasks {
				list = append(list, taskJSON(task))
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"tasks": list,
				"count": len(list),
			})
		}

		printTaskList(cmd.OutOrStdout(), tasks)
		return nil
	},
}

var taskActiveCmd = &cobra.Command{
	Use:   "active [task]",
	Short: "Set the active task",
	Long: `Make a task the active one. The task can be given by ID, ID prefix
or title. Without an argument, pick one from the open tasks.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var id string
		if len(args) == 1 {
			task, err := app.tasks.ResolveTask(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to find task: %w", err)
			}
			id = task.ID
		} else {
			if !isInteractive() {
				return errors.New("a task is required")
			}
			tasks, err := app.tasks.ListTasks(ctx, services.ListTasksRequest{OnlyPending: true})
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No open tasks. Add one with: pomo task add")
				return nil
			}
			id, err = pickTask(tasks)
			if err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}
		}

		task, err := app.tasks.SetActiveTask(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to activate task: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "▶️  Active task: %s\n", task.Title)
		return nil
	},
}

var taskClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the active task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.tasks.ClearActiveTask(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear active task: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No active task.")
		return nil
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [task]",
	Short: "Complete a task",
	Long:  `Mark a task as completed. Without an argument, the active task is completed.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var task *domain.Task
		var err error
		if len(args) == 1 {
			task, err = app.tasks.ResolveTask(ctx, args[0])
		} else {
			task, err = app.tasks.ActiveTask(ctx)
			if err == nil && task == nil {
				err = errors.New("no active task")
			}
		}
		if err != nil {
			return fmt.Errorf("failed to find task: %w", err)
		}

		if err := app.tasks.CompleteTask(ctx, task.ID); err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Completed: %s (%d pomodoros)\n", task.Title, task.CompletedPomodoros)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		task, err := app.tasks.ResolveTask(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to find task: %w", err)
		}
		if err := app.tasks.DeleteTask(ctx, task.ID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted: %s\n", task.Title)
		return nil
	},
}

func init() {
	taskAddCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Task description")
	taskAddCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category: work, study, personal, health or other")
	taskAddCmd.Flags().IntVarP(&addEstimate, "estimate", "e", 1, "Estimated pomodoros")
	taskAddCmd.Flags().StringVar(&addTags, "tags", "", "Comma-separated tags")

	taskListCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Filter by status (pending, in_progress, completed, cancelled)")
	taskListCmd.Flags().BoolVarP(&listAll, "all", "a", false, "List all tasks (default: open only)")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskActiveCmd, taskClearCmd, taskDoneCmd, taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
}

func printTaskList(w io.Writer, tasks []*domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}

	fmt.Fprintf(w, "📋 Tasks (%d):\n\n", len(tasks))
	for _, task := range tasks {
		fmt.Fprintf(w, "%s %s [%s] %d/%d (ID: %s)\n",
			getStatusIcon(task.Status), task.Title, task.Category,
			task.CompletedPomodoros, task.EstimatedPomodoros, shortID(task.ID))
		if len(task.Tags) > 0 {
			fmt.Fprintf(w, "   Tags: %v\n", task.Tags)
		}
	}
}

func getStatusIcon(status domain.TaskStatus) string {
	switch status {
	case domain.StatusPending:
		return "⏳"
	case domain.StatusInProgress:
		return "▶️"
	case domain.StatusCompleted:
		return "✅"
	case domain.StatusCancelled:
		return "❌"
	default:
		return "❓"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// isInteractive reports whether stdin is a terminal a form can read from.
func isInteractive() bool {
	return term.IsTerminal(os.Stdin.Fd())
}

// promptTask fills req from an interactive form.
func promptTask(req *services.AddTaskRequest) error {
	category := string(domain.CategoryWork)
	estimate := strconv.Itoa(max(req.EstimatedPomodoros, 1))

	options := make([]huh.Option[string], len(domain.Categories))
	for i, c := range domain.Categories {
		options[i] = huh.NewOption(string(c), string(c))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&req.Title).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return domain.ErrEmptyTaskTitle
				}
				return nil
			}),
			huh.NewText().Title("Description").Value(&req.Description),
			huh.NewSelect[string]().Title("Category").Options(options...).Value(&category),
			huh.NewInput().Title("Estimated pomodoros").Value(&estimate).Validate(func(s string) error {
				if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 1 {
					return domain.ErrInvalidEstimate
				}
				return nil
			}),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	req.Category = category
	req.EstimatedPomodoros, _ = strconv.Atoi(strings.TrimSpace(estimate))
	return nil
}

// pickTask asks the user to choose one of tasks and returns its ID.
func pickTask(tasks []*domain.Task) (string, error) {
	options := make([]huh.Option[string], len(tasks))
	for i, t := range tasks {
		label := fmt.Sprintf("%s  (%d/%d)", t.Title, t.CompletedPomodoros, t.EstimatedPomodoros)
		options[i] = huh.NewOption(label, t.ID)
	}

	var id string
	err := huh.NewSelect[string]().
		Title("Which task are you working on?").
		Options(options...).
		Value(&id).
		Run()
	return id, err
}
