// Package cmd provides the CLI commands for the pomo application.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	dbPath     string
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pomo",
	Short: "pomo - A Pomodoro timer with tasks, stats and streaks",
	Long: `pomo is a terminal Pomodoro timer. It cycles through focus sessions
and short and long breaks, credits finished pomodoros to the active task,
and keeps daily statistics, streaks, achievements and challenges.

Run "pomo" with no arguments to open the timer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTimer(cmd, false)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default: ~/.pomo/pomo.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("pomo\nVersion: {{.Version}}\n")
}
