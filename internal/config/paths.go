package config

import (
	"os"
	"path/filepath"

	"github.com/pddkit/pddserve/internal/pathutil"
)

// Dir returns the pddserve configuration directory path.
// By default, this is ~/.config/pddserve. If the XDG_CONFIG_HOME
// environment variable is set, it uses $XDG_CONFIG_HOME/pddserve instead.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = "~/.config"
	}
	return filepath.Join(pathutil.ExpandHome(base), "pddserve")
}

// DefaultPath returns the full path to the default configuration file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}
