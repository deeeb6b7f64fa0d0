package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dagr/internal/calendar"
	"dagr/internal/cpm"
	"dagr/internal/leveler"
	"dagr/internal/selector"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "recommend the single best task to work on right now",
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

		next, ok := selector.NextTask(s, result)
		if !ok {
			fmt.Println("nothing ready to work on")
		} else {
			fmt.Printf("%s  %s  (slack %.1fh)\n", styleTitle.Render(next.Task.ID), next.Task.Name, next.Slack)
		}

		for _, bg := range selector.KickoffBackground(s, result) {
			fmt.Printf("background: %s  %s\n", bg.Task.ID, bg.Task.Name)
		}
		return nil
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "show the dopamine menu: ready tasks bucketed by how they feel to start",
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

		for _, bucket := range selector.DopamineMenu(s, result) {
			if len(bucket.Items) == 0 {
				continue
			}
			t := newTable(bucket.Name, "ID", "Name", "Hours", "Slack")
			for _, c := range bucket.Items {
				t.addRow(c.Task.ID, c.Task.Name, fmt.Sprintf("%.1f", c.Task.DurationHours), fmt.Sprintf("%.1f", c.Slack))
			}
			fmt.Print(t.render())
		}
		return nil
	},
}

var dailyDays int

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "show the next -n days' slice of the leveled schedule (default 1: today)",
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

		n := dailyDays
		if n < 1 {
			n = 1
		}
		today := dateOnly(time.Now())
		cutoff := today.AddDate(0, 0, n)

		t := newTable(fmt.Sprintf("Next %d day(s)", n), "Date", "Stream", "Task", "Window")
		for _, b := range schedule.Blocks {
			if b.Start.Before(today) || !b.Start.Before(cutoff) {
				continue
			}
			window := fmt.Sprintf("%s-%s", b.Start.Format("15:04"), b.End.Format("15:04"))
			t.addRow(b.Start.Format("2006-01-02"), string(b.Stream), b.TaskID, window)
		}
		fmt.Print(t.render())
		return nil
	},
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func init() {
	dailyCmd.Flags().IntVarP(&dailyDays, "days", "n", 1, "number of days ahead to show")
	rootCmd.AddCommand(nextCmd, todayCmd, dailyCmd)
}
