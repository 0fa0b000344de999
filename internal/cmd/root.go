// Package cmd implements the CLI commands for pddserve.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pddkit/pddserve/internal/clog"
	"github.com/pddkit/pddserve/internal/config"
	"github.com/pddkit/pddserve/internal/term"
	"github.com/pddkit/pddserve/internal/version"
)

var (
	configFlag string
	debugFlag  bool
	silentFlag bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pddserve",
	Short: "HTTP server for the pdd prompt-driven development CLI",
	Long: `pddserve exposes the pdd command-line tool over HTTP so that a browser
frontend can run pdd commands, save and load prompt files, and list the
commands pdd supports.

Each request is translated into a pdd invocation in the server root
directory. Literal prompts are written to temporary prompt files, and
output, errors and timeouts are reported back as JSON.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		term.SetSilent(silentFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default $XDG_CONFIG_HOME/pddserve/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&silentFlag, "silent", false, "suppress non-error output")
}

// Execute runs the root command and returns any error. Errors other than
// ExitCodeError are reported on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		var exitErr *ExitCodeError
		if !errors.As(err, &exitErr) {
			term.Error("%v", err)
		}
	}
	return err
}

// loadConfig reads the configuration named by --config and sets up logging
// from it. serverMode routes log output to the log file only.
func loadConfig(o config.Overrides, serverMode bool) (*config.Config, error) {
	cfg, err := config.LoadWith(configFlag, o)
	if err != nil {
		return nil, err
	}

	level := clog.ParseLevel(cfg.Log.Level)
	if debugFlag {
		level = clog.LevelDebug
	}
	if err := clog.Configure(cfg.Log.File, level, serverMode); err != nil {
		return nil, err
	}
	return cfg, nil
}
