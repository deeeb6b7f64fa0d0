package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dagr/internal/project"
)

var (
	initHoursPerDay  float64
	initDayStart     string
	initSkipWeekends bool
	initStart        string
	initForce        bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "create a new project state file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if project.Exists(statePath) && !initForce {
			return fmt.Errorf("%s already exists; pass --force to overwrite", statePath)
		}

		start := time.Now()
		if initStart != "" {
			d, err := project.ParseDate(initStart)
			if err != nil {
				return err
			}
			start = d.Time
		}

		cfg := project.DefaultConfiguration(start)
		cfg.HoursPerDay = initHoursPerDay
		cfg.SkipWeekends = initSkipWeekends
		if initDayStart != "" {
			dayStart, err := project.ParseClockTime(initDayStart)
			if err != nil {
				return err
			}
			cfg.DayStartTime = dayStart
		}

		s := project.New(cfg)
		if err := s.Save(statePath); err != nil {
			return err
		}
		fmt.Printf("initialized project at %s\n", statePath)
		return nil
	},
}

func init() {
	initCmd.Flags().Float64Var(&initHoursPerDay, "hours-per-day", 8, "default working hours per day")
	initCmd.Flags().StringVar(&initDayStart, "day-start", "09:00", "time of day the working day begins (HH:MM)")
	initCmd.Flags().BoolVar(&initSkipWeekends, "skip-weekends", true, "give Saturday/Sunday zero default capacity")
	initCmd.Flags().StringVar(&initStart, "start", "", "project start date (YYYY-MM-DD); defaults to today")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing project state file")
	rootCmd.AddCommand(initCmd)
}

// importTaskWire is the bulk-import wire format: depends_on may reference
// either an existing task's id or another entry's name in the same batch.
// If id is present and matches an existing task, the entry updates that
// task instead of creating a new one.
type importTaskWire struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	DurationHours float64  `json:"duration_hrs"`
	DependsOn     []string `json:"depends_on,omitempty"`
	Deadline      string   `json:"deadline,omitempty"`
	ProposedStart string   `json:"proposed_start,omitempty"`
	Background    bool     `json:"background,omitempty"`
	Flexible      bool     `json:"flexible,omitempty"`
	Project       string   `json:"project,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "bulk-add tasks from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var wire []importTaskWire
		if err := json.Unmarshal(b, &wire); err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}

		tasks := make([]project.ImportTask, len(wire))
		for i, w := range wire {
			it := project.ImportTask{
				ID: w.ID, Name: w.Name, DurationHours: w.DurationHours, DependsOn: w.DependsOn,
				Background: w.Background, Flexible: w.Flexible, Project: w.Project,
				Tags: w.Tags, Notes: w.Notes,
			}
			if w.Deadline != "" {
				d, err := project.ParseDate(w.Deadline)
				if err != nil {
					return fmt.Errorf("task %q: %w", w.Name, err)
				}
				it.Deadline = &d
			}
			if w.ProposedStart != "" {
				d, err := project.ParseDate(w.ProposedStart)
				if err != nil {
					return fmt.Errorf("task %q: %w", w.Name, err)
				}
				it.ProposedStart = &d
			}
			tasks[i] = it
		}

		s, err := loadState()
		if err != nil {
			return err
		}
		ids, warns, err := s.ImportMerge(tasks)
		if err != nil {
			return err
		}
		printWarnings(warns)
		if err := saveState(s); err != nil {
			return err
		}
		fmt.Printf("imported %d task(s): %v\n", len(ids), ids)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
