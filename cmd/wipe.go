package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xvierd/pomodoro-pro/internal/config"
)

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all tasks, stats and progress (wipes the database)",
	Long: `Permanently deletes the pomo database, removing tasks, session history,
statistics, settings, XP and achievements. The config file is kept.
This cannot be undone. Use --force to skip the confirmation prompt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := dbPath
		if path == "" {
			path = config.GetDBPath(app.config)
		}
		out := cmd.OutOrStdout()

		if !wipeForce {
			fmt.Fprintf(out, "This will permanently delete: %s\n", path)
			fmt.Fprint(out, "Are you sure? Type 'yes' to confirm: ")
			reader := bufio.NewReader(cmd.InOrStdin())
			input, _ := reader.ReadString('\n')
			if strings.TrimSpace(strings.ToLower(input)) != "yes" {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(out, "Nothing to wipe: the database does not exist.")
				return nil
			}
			return fmt.Errorf("failed to delete database: %w", err)
		}
		// WAL side files belong to the same database.
		for _, suffix := range []string{"-wal", "-shm"} {
			_ = os.Remove(path + suffix)
		}

		fmt.Fprintln(out, "Database deleted. Fresh start.")
		return nil
	},
}

func init() {
	wipeCmd.Flags().BoolVarP(&wipeForce, "force", "f", false, "Skip confirmation prompt")
	rootCmd.AddCommand(wipeCmd)
}
