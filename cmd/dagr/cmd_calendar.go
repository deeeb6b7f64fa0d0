package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dagr/internal/project"
)

var capacityCmd = &cobra.Command{
	Use:   "capacity <date> <hours>",
	Short: "override a date's working-hour capacity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := project.ParseDate(args[0])
		if err != nil {
			return err
		}
		hours, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid hours %q: %w", args[1], err)
		}

		s, err := loadState()
		if err != nil {
			return err
		}
		if _, err := s.Capacity(d, hours); err != nil {
			return err
		}
		if err := saveState(s); err != nil {
			return err
		}
		fmt.Printf("%s capacity set to %.1fh\n", d, hours)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(capacityCmd)
}
