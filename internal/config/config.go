// Package config manages dagr's CLI-only user preferences file, kept
// separate from a project's dagr.json so switching projects never touches
// a user's display settings. Grounded on the teacher's
// internal/config.DefaultConfig/Load/Save pattern, swapped from its
// agent-runtime settings to dagr's terminal-output preferences.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds preferences that outlive any one project.
type Config struct {
	StatePath        string `yaml:"state_path"`
	Color            bool   `yaml:"color"`
	Verbose          bool   `yaml:"verbose"`
	CriticalPathSort string `yaml:"critical_path_sort"`
}

// DefaultConfig matches a fresh install: color on, verbose off, state in
// the current directory's dagr.json, critical-path printed in dependency
// (chain) order.
func DefaultConfig() Config {
	return Config{
		StatePath:        "dagr.json",
		Color:            true,
		Verbose:          false,
		CriticalPathSort: "chain",
	}
}

// Dir returns $HOME/.config/dagr.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dagr"), nil
}

// Path returns the full preferences file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "preferences.yaml"), nil
}

// Load reads preferences.yaml, falling back to DefaultConfig if it
// doesn't exist yet.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to preferences.yaml, creating ~/.config/dagr if needed.
func (c Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path, err := Path()
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
