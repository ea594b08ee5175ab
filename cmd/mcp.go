package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xvierd/pomodoro-pro/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server communicates over stdio and hosts its own timer, so assistants
can start, pause and skip sessions as well as query tasks and statistics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.config.MCP.Enabled {
			return errors.New("the MCP server is disabled; set [mcp] enabled = true in the config")
		}

		// stdout carries the protocol; anything for humans goes to stderr.
		fmt.Fprintln(cmd.ErrOrStderr(), "🚀 MCP server listening on stdio (Ctrl+C to stop)")

		ctx, cancel := setupSignalHandler(cmd.Context())
		defer cancel()

		c := newController(ctx)
		defer closeController(c)

		server := mcp.NewServer(app.state, c)
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
