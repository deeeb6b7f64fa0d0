package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"dagr/internal/dagerr"
)

// onDisk is the top-level shape of dagr.json.
type onDisk struct {
	Config Configuration `json:"config"`
	Tasks  []Task        `json:"tasks"`
}

// Load reads and validates a project from path. A missing file is reported
// as StateNotInitialized so the CLI can suggest `dagr init`.
func Load(path string) (*State, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, dagerr.New(dagerr.StateNotInitialized, "no project state at %s", path).
				WithSuggestion("run `dagr init` to create one")
		}
		return nil, err
	}

	var d onDisk
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, dagerr.New(dagerr.InvalidField, "could not parse %s: %v", path, err)
	}

	s := &State{Config: d.Config, Tasks: d.Tasks}
	if s.Config.CapacityOverrides == nil {
		s.Config.CapacityOverrides = map[string]float64{}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes s to path as indented JSON, creating parent directories as
// needed.
func (s *State) Save(path string) error {
	d := onDisk{Config: s.Config, Tasks: s.Tasks}
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Exists reports whether a project state file is present at path, used by
// `init` to refuse to clobber an existing project without --force.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
