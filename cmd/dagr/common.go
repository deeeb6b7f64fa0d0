package main

import (
	"fmt"
	"os"

	"dagr/internal/dagerr"
	"dagr/internal/project"
)

func loadState() (*project.State, error) {
	return project.Load(statePath)
}

func saveState(s *project.State) error {
	return s.Save(statePath)
}

func printWarnings(warns []dagerr.Warning) {
	for _, w := range warns {
		fmt.Fprintln(os.Stderr, styleWarning.Render("warning: "+w.String()))
	}
}

// exitCode maps a dagerr.Kind to a distinct process exit code so scripts
// can branch on failure class without parsing the message.
func exitCode(err error) int {
	de, ok := err.(*dagerr.Error)
	if !ok {
		return 1
	}
	switch de.Kind {
	case dagerr.UnknownTask:
		return 2
	case dagerr.CycleDetected:
		return 3
	case dagerr.UnresolvedReference:
		return 4
	case dagerr.InvalidField:
		return 5
	case dagerr.StateNotInitialized:
		return 6
	case dagerr.UnschedulableHorizon:
		return 7
	case dagerr.StatusTransition:
		return 8
	default:
		return 1
	}
}
