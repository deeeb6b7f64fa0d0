package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"dagr/internal/calendar"
	"dagr/internal/cpm"
	"dagr/internal/leveler"
	"dagr/internal/project"
	"dagr/internal/selector"
)

var (
	scheduleRemaining bool
	scheduleCSV       bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "print the leveled day-by-day schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadState()
		if err != nil {
			return err
		}
		g, err := s.Graph()
		if err != nil {
			return err
		}
		cal := calendar.New(s.CalendarConfig())
		result, warns, err := (cpm.Engine{}).Compute(s, cal, g)
		if err != nil {
			return err
		}
		printWarnings(warns)

		schedule, err := (leveler.Leveler{}).Level(s, cal, g, result)
		if err != nil {
			return err
		}

		blocks := schedule.Blocks
		if scheduleRemaining {
			var filtered []leveler.Block
			for _, b := range blocks {
				if task, ok := s.Task(b.TaskID); ok && task.Status == project.StatusDone {
					continue
				}
				filtered = append(filtered, b)
			}
			blocks = filtered
		}

		if scheduleCSV {
			var sb strings.Builder
			sb.WriteString("date,stream,task,start,end\n")
			for _, b := range blocks {
				sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s\n",
					b.Start.Format("2006-01-02"), b.Stream, b.TaskID, b.Start.Format("15:04"), b.End.Format("15:04")))
			}
			fmt.Print(sb.String())
			return nil
		}

		t := newTable("Schedule", "Date", "Stream", "Task", "Window")
		for _, b := range blocks {
			window := fmt.Sprintf("%s-%s", b.Start.Format("15:04"), b.End.Format("15:04"))
			t.addRow(b.Start.Format("2006-01-02"), string(b.Stream), b.TaskID, window)
		}
		fmt.Print(t.render())
		return nil
	},
}

var criticalPathSort string

var criticalPathCmd = &cobra.Command{
	Use:   "critical-path",
	Short: "print the tasks on the critical path",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadState()
		if err != nil {
			return err
		}
		g, err := s.Graph()
		if err != nil {
			return err
		}
		order, err := g.TopologicalOrder()
		if err != nil {
			return err
		}
		cal := calendar.New(s.CalendarConfig())
		result, warns, err := (cpm.Engine{}).Compute(s, cal, g)
		if err != nil {
			return err
		}
		printWarnings(warns)

		ids := result.CriticalPath(order) // "chain": dependency order, the default
		if criticalPathSort == "chrono" {
			ids = append([]string(nil), ids...)
			sortIDsByES(ids, result)
		} else if criticalPathSort != "" && criticalPathSort != "chain" {
			return fmt.Errorf("invalid --sort %q: must be chrono or chain", criticalPathSort)
		}

		t := newTable("Critical Path", "ID", "Name", "ES", "EF", "Slack")
		for _, id := range ids {
			task, _ := s.Task(id)
			r := result.Tasks[id]
			t.addRow(id, task.Name, fmt.Sprintf("%.1f", r.ES), fmt.Sprintf("%.1f", r.EF), fmt.Sprintf("%.1f", r.Slack))
		}
		fmt.Print(t.render())
		fmt.Printf("horizon: %.1fh (%s)\n", result.Horizon, result.HorizonTime.Format("2006-01-02 15:04"))
		return nil
	},
}

func sortIDsByES(ids []string, result cpm.Result) {
	sort.SliceStable(ids, func(i, j int) bool {
		return result.Tasks[ids[i]].ES < result.Tasks[ids[j]].ES
	})
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "summarize the project: task counts, horizon, and at-risk tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadState()
		if err != nil {
			return err
		}
		g, err := s.Graph()
		if err != nil {
			return err
		}
		cal := calendar.New(s.CalendarConfig())
		result, warns, err := (cpm.Engine{}).Compute(s, cal, g)
		if err != nil {
			return err
		}
		printWarnings(warns)

		counts := map[project.Status]int{}
		for _, t := range s.Tasks {
			counts[t.Status]++
		}
		fmt.Printf("%d task(s): %d not_started, %d in_progress, %d done\n",
			len(s.Tasks), counts[project.StatusNotStarted], counts[project.StatusInProgress], counts[project.StatusDone])
		fmt.Printf("horizon: %.1fh (%s)\n", result.Horizon, result.HorizonTime.Format("2006-01-02 15:04"))

		schedule, err := (leveler.Leveler{}).Level(s, cal, g, result)
		if err != nil {
			return err
		}
		atRisk := selector.AtRiskTasks(s, schedule)
		if len(atRisk) > 0 {
			t := newTable("At Risk", "ID", "Name", "Scheduled End", "Deadline")
			for _, r := range atRisk {
				t.addRow(r.Task.ID, r.Task.Name, r.ScheduledEnd.String(), r.DeadlineDate.String())
			}
			fmt.Print(t.render())
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleRemaining, "remaining", false, "omit already-done tasks from the printed schedule")
	scheduleCmd.Flags().BoolVar(&scheduleCSV, "csv", false, "emit CSV instead of a table")
	criticalPathCmd.Flags().StringVar(&criticalPathSort, "sort", "chain", "ordering: chain (dependency order) or chrono (by earliest start)")
	rootCmd.AddCommand(scheduleCmd, criticalPathCmd, statusCmd)
}
