package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"dagr/internal/project"
)

var (
	addID            string
	addDuration      float64
	addDependsOn     []string
	addDeadline      string
	addProposedStart string
	addBackground    bool
	addFlexible      bool
	addProject       string
	addTags          []string
	addNotes         string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "add a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadState()
		if err != nil {
			return err
		}

		in := project.TaskInput{
			ID: addID, Name: args[0], DurationHours: addDuration, DependsOn: addDependsOn,
			Background: addBackground, Flexible: addFlexible, Project: addProject,
			Tags: addTags, Notes: addNotes,
		}
		if addDeadline != "" {
			d, err := project.ParseDate(addDeadline)
			if err != nil {
				return err
			}
			in.Deadline = &d
		}
		if addProposedStart != "" {
			d, err := project.ParseDate(addProposedStart)
			if err != nil {
				return err
			}
			in.ProposedStart = &d
		}

		t, warns, err := s.AddTask(in)
		if err != nil {
			return err
		}
		printWarnings(warns)
		if err := saveState(s); err != nil {
			return err
		}
		fmt.Printf("added %s: %s\n", t.ID, t.Name)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "explicit task id (auto-assigned if omitted)")
	addCmd.Flags().Float64Var(&addDuration, "duration", 0, "estimated effort, in hours")
	addCmd.Flags().StringSliceVar(&addDependsOn, "depends-on", nil, "ids this task depends on")
	addCmd.Flags().StringVar(&addDeadline, "deadline", "", "deadline date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addProposedStart, "proposed-start", "", "earliest allowed start date (YYYY-MM-DD)")
	addCmd.Flags().BoolVar(&addBackground, "background", false, "schedule on the background stream")
	addCmd.Flags().BoolVar(&addFlexible, "flexible", false, "dependents ignore this task's completion for readiness")
	addCmd.Flags().StringVar(&addProject, "project", "", "project/grouping label")
	addCmd.Flags().StringSliceVar(&addTags, "tags", nil, "free-form tags")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes (markdown)")
	rootCmd.AddCommand(addCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list every task",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadState()
		if err != nil {
			return err
		}
		t := newTable("Tasks", "ID", "Name", "Status", "Hours", "Depends On", "Deadline")
		for _, task := range s.Tasks {
			deadline := "-"
			if task.Deadline != nil {
				deadline = task.Deadline.String()
			}
			t.addRow(task.ID, task.Name, string(task.Status),
				fmt.Sprintf("%.1f", task.DurationHours), strings.Join(task.DependsOn, ", "), deadline)
		}
		fmt.Print(t.render())
		return nil
	},
}

func init() { rootCmd.AddCommand(listCmd) }

var (
	updName          string
	updDuration      float64
	updAddDeps       []string
	updRemoveDeps    []string
	updDeadline      string
	updClearDeadline bool
	updProposedStart string
	updClearStart    bool
	updBackground    string
	updFlexible      string
	updProject       string
	updTags          []string
	updNotes         string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "update a task's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadState()
		if err != nil {
			return err
		}

		var patch project.TaskPatch
		if cmd.Flags().Changed("name") {
			patch.Name = &updName
		}
		if cmd.Flags().Changed("duration") {
			patch.DurationHours = &updDuration
		}
		patch.AddDeps = updAddDeps
		patch.RemoveDeps = updRemoveDeps
		if updClearDeadline {
			patch.ClearDeadline = true
		} else if updDeadline != "" {
			d, err := project.ParseDate(updDeadline)
			if err != nil {
				return err
			}
			patch.Deadline = &d
		}
		if updClearStart {
			patch.ClearProposedStart = true
		} else if updProposedStart != "" {
			d, err := project.ParseDate(updProposedStart)
			if err != nil {
				return err
			}
			patch.ProposedStart = &d
		}
		if cmd.Flags().Changed("background") {
			v := updBackground == "true"
			patch.Background = &v
		}
		if cmd.Flags().Changed("flexible") {
			v := updFlexible == "true"
			patch.Flexible = &v
		}
		if cmd.Flags().Changed("project") {
			patch.Project = &updProject
		}
		if cmd.Flags().Changed("tags") {
			patch.Tags = &updTags
		}
		if cmd.Flags().Changed("notes") {
			patch.Notes = &updNotes
		}

		warns, err := s.UpdateTask(args[0], patch)
		if err != nil {
			return err
		}
		printWarnings(warns)
		if err := saveState(s); err != nil {
			return err
		}
		fmt.Printf("updated %s\n", args[0])
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updName, "name", "", "new name")
	updateCmd.Flags().Float64Var(&updDuration, "duration", 0, "new duration, in hours")
	updateCmd.Flags().StringSliceVar(&updAddDeps, "add-dep", nil, "dependency id to add")
	updateCmd.Flags().StringSliceVar(&updRemoveDeps, "remove-dep", nil, "dependency id to remove")
	updateCmd.Flags().StringVar(&updDeadline, "deadline", "", "new deadline date (YYYY-MM-DD)")
	updateCmd.Flags().BoolVar(&updClearDeadline, "clear-deadline", false, "remove the deadline")
	updateCmd.Flags().StringVar(&updProposedStart, "proposed-start", "", "new earliest start date (YYYY-MM-DD)")
	updateCmd.Flags().BoolVar(&updClearStart, "clear-proposed-start", false, "remove the earliest start date")
	updateCmd.Flags().StringVar(&updBackground, "background", "", "true/false")
	updateCmd.Flags().StringVar(&updFlexible, "flexible", "", "true/false")
	updateCmd.Flags().StringVar(&updProject, "project", "", "new project/grouping label")
	updateCmd.Flags().StringSliceVar(&updTags, "tags", nil, "replacement tag list")
	updateCmd.Flags().StringVar(&updNotes, "notes", "", "replacement notes")
	rootCmd.AddCommand(updateCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadState()
		if err != nil {
			return err
		}
		if _, err := s.DeleteTask(args[0]); err != nil {
			return err
		}
		if err := saveState(s); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() { rootCmd.AddCommand(deleteCmd) }

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "show a task's full detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadState()
		if err != nil {
			return err
		}
		t, ok := s.Task(args[0])
		if !ok {
			return fmt.Errorf("no such task %q", args[0])
		}

		fmt.Printf("%s  %s\n", styleTitle.Render(t.ID), t.Name)
		fmt.Printf("  status:      %s\n", t.Status)
		fmt.Printf("  duration:    %.1fh\n", t.DurationHours)
		fmt.Printf("  depends_on:  %s\n", strings.Join(t.DependsOn, ", "))
		if t.Deadline != nil {
			fmt.Printf("  deadline:    %s\n", t.Deadline)
		}
		if t.ProposedStart != nil {
			fmt.Printf("  proposed:    %s\n", t.ProposedStart)
		}
		fmt.Printf("  background:  %v\n", t.Background)
		fmt.Printf("  flexible:    %v\n", t.Flexible)
		if t.Project != "" {
			fmt.Printf("  project:     %s\n", t.Project)
		}
		if len(t.Tags) > 0 {
			fmt.Printf("  tags:        %s\n", strings.Join(t.Tags, ", "))
		}
		if t.Notes != "" {
			rendered, err := glamour.Render(t.Notes, "dark")
			if err != nil {
				fmt.Println(t.Notes)
			} else {
				fmt.Print(rendered)
			}
		}
		return nil
	},
}

func init() { rootCmd.AddCommand(showCmd) }
