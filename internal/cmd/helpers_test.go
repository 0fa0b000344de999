package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pddkit/pddserve/internal/clog"
	"github.com/pddkit/pddserve/internal/config"
	"github.com/pddkit/pddserve/internal/term"
)

// executeCommand runs rootCmd with args and returns what was written to
// stdout and stderr. Flags from earlier runs are reset first.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	term.SetOutput(&out)
	term.SetErrOutput(&errOut)
	t.Cleanup(func() {
		term.Reset()
		clog.Reset()
	})

	resetFlags(rootCmd)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err = Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// isolateEnv points config lookup at an empty directory and clears the
// environment variables that would override it.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	for _, key := range []string{
		config.EnvHost, config.EnvPort, config.EnvCORSOrigins,
		config.EnvTimeout, config.EnvLogLevel, config.EnvCLIPath,
	} {
		t.Setenv(key, "")
	}
	return dir
}

// fakePDD writes a pdd stand-in script and points PDD_PATH at it.
func fakePDD(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pdd")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write fake pdd: %v", err)
	}
	t.Setenv(config.EnvCLIPath, path)
	return path
}
