package executor

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pddkit/pddserve/internal/config"
	"github.com/pddkit/pddserve/internal/pathutil"
)

// Locator resolves the pdd executable. Resolution runs on every call so a
// venv created after startup is picked up without a restart.
type Locator struct {
	root     string
	cli      config.CLIConfig
	lookPath func(string) (string, error)
}

// NewLocator creates a Locator for the given server root.
func NewLocator(root string, cli config.CLIConfig) *Locator {
	return &Locator{root: root, cli: cli, lookPath: exec.LookPath}
}

// Candidates returns the explicit locations checked before PATH, in order.
func (l *Locator) Candidates() []string {
	var out []string
	if l.cli.VenvDir != "" {
		out = append(out,
			filepath.Join(l.root, l.cli.VenvDir, "bin", l.cli.Name),
			filepath.Join(filepath.Dir(l.root), l.cli.VenvDir, "bin", l.cli.Name),
		)
	}
	for _, dir := range l.cli.FallbackDirs {
		out = append(out, filepath.Join(pathutil.ExpandHome(dir), l.cli.Name))
	}
	if l.cli.Path != "" {
		out = append(out, pathutil.ExpandHome(l.cli.Path))
	}
	return out
}

// Resolve returns the first usable executable. When nothing is found it
// returns the bare name so the start failure is reported by the OS.
func (l *Locator) Resolve() string {
	for _, c := range l.Candidates() {
		if isExecutable(c) {
			return c
		}
	}
	if p, err := l.lookPath(l.cli.Name); err == nil {
		return p
	}
	return l.cli.Name
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
