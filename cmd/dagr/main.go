// Package main implements the dagr CLI entry point and root command.
//
// # File Index
//
//   - main.go          - entry point, rootCmd, global flags, logging/config wiring
//   - cmd_project.go   - init, import
//   - cmd_task.go      - add, list, update, delete, show
//   - cmd_status.go    - start, done, reset, set-status
//   - cmd_schedule.go  - schedule, critical-path, status
//   - cmd_selector.go  - next, today, daily
//   - cmd_calendar.go  - capacity
//   - cmd_viz.go       - viz, viz-html
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dagr/internal/config"
	"dagr/internal/logging"
)

var (
	verbose   bool
	statePath string
	prefs     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dagr",
	Short: "dagr - a single-user task-graph scheduler",
	Long: `dagr tracks a project as a directed acyclic graph of tasks, computes the
critical path through it with working-hour calendar arithmetic, levels the
result into a day-by-day schedule, and recommends what to work on next.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading preferences: %w", err)
		}
		prefs = loaded
		if !cmd.Flags().Changed("state") {
			statePath = prefs.StatePath
		}
		if !cmd.Flags().Changed("verbose") {
			verbose = prefs.Verbose
		}
		if cmd.Name() == "critical-path" && !cmd.Flags().Changed("sort") && prefs.CriticalPathSort != "" {
			criticalPathSort = prefs.CriticalPathSort
		}

		if err := logging.Initialize(verbose); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "dagr.json", "path to the project state file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleCritical.Render("error:"), err)
		os.Exit(exitCode(err))
	}
}
