package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dagr/internal/project"
)

var startCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "mark a task in_progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(args[0], project.StatusInProgress)
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(args[0], project.StatusDone)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "return a task to not_started, clearing its actual timestamps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadState()
		if err != nil {
			return err
		}
		warns, err := s.Reset(args[0])
		if err != nil {
			return err
		}
		printWarnings(warns)
		if err := saveState(s); err != nil {
			return err
		}
		fmt.Printf("reset %s\n", args[0])
		return nil
	},
}

var setStatusCmd = &cobra.Command{
	Use:   "set-status <id> <not_started|in_progress|done>",
	Short: "set a task's status directly",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(args[0], project.Status(args[1]))
	},
}

func transition(id string, to project.Status) error {
	s, err := loadState()
	if err != nil {
		return err
	}
	warns, err := s.SetStatus(id, to, time.Now())
	if err != nil {
		return err
	}
	printWarnings(warns)
	if err := saveState(s); err != nil {
		return err
	}
	fmt.Printf("%s -> %s\n", id, to)
	return nil
}

func init() {
	rootCmd.AddCommand(startCmd, doneCmd, resetCmd, setStatusCmd)
}
