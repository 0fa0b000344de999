package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pddkit/pddserve/internal/config"
	"github.com/pddkit/pddserve/internal/dispatch"
	"github.com/pddkit/pddserve/internal/term"
)

var (
	runPrompt   string
	runBasename string
	runArgs     []string
	runFlags    []string
	runJSON     bool
	runRoot     string
)

var runCmd = &cobra.Command{
	Use:   "run <command>",
	Short: "Run one pdd command the way the server would",
	Long: `Run a single pdd command through the same validation, prompt handling
and error mapping as POST /execute, and print its output.

--prompt takes either a path to an existing prompt file under the server
root or literal prompt text, which is written to a temporary prompt file.
--arg key=value adds an argument; repeating a key passes the flag once per
value. --flag key adds a flag with no value. Keys without a leading dash
get one.

Exits with status 1 if the command fails.`,
	Example: `  pddserve run sync --basename calculator
  pddserve run generate --prompt "Write a CLI calculator" --arg output=calc.py
  pddserve run generate --prompt prompts/calc.prompt --arg e=LANG=go --arg e=STYLE=short`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runPrompt, "prompt", "", "prompt file path or literal prompt text")
	runCmd.Flags().StringVarP(&runBasename, "basename", "b", "", "basename passed to pdd as -b")
	runCmd.Flags().StringArrayVar(&runArgs, "arg", nil, "argument as key=value (repeatable)")
	runCmd.Flags().StringArrayVar(&runFlags, "flag", nil, "flag with no value (repeatable)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the full JSON response")
	runCmd.Flags().StringVar(&runRoot, "root", "", "server root directory")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cmdArgs, err := parseArgs(runArgs, runFlags)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(config.Overrides{Root: runRoot}, false)
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	req := dispatch.Request{
		Command:  args[0],
		Args:     cmdArgs,
		Prompt:   runPrompt,
		Basename: runBasename,
	}
	resp := a.service.Execute(cmd.Context(), req)

	if runJSON {
		if err := term.JSON(resp); err != nil {
			return err
		}
	} else if resp.Success {
		if resp.Output != "" {
			term.Println(resp.Output)
		}
	} else {
		term.Error("%s", strings.TrimRight(resp.ErrorMessage(), "\n"))
	}

	if !resp.Success {
		return NewExitCodeError(1)
	}
	return nil
}

// parseArgs builds request arguments from --arg key=value and --flag key
// values. A repeated key turns its value into a sequence; an --arg with no
// "=" is a bare flag.
func parseArgs(pairs, flags []string) (dispatch.Args, error) {
	var out dispatch.Args
	for _, p := range pairs {
		key, value, hasValue := strings.Cut(p, "=")
		if key == "" {
			return nil, fmt.Errorf("invalid --arg %q: empty key", p)
		}
		if !hasValue {
			out = addArg(out, key, dispatch.Absent())
			continue
		}
		out = addArg(out, key, dispatch.Scalar(value))
	}
	for _, f := range flags {
		if f == "" {
			return nil, fmt.Errorf("invalid --flag: empty key")
		}
		out = addArg(out, f, dispatch.Absent())
	}
	return out, nil
}

// addArg appends key=v, or merges v into an existing key's value.
func addArg(args dispatch.Args, key string, v dispatch.Value) dispatch.Args {
	prev, ok := args.Get(key)
	if !ok {
		return append(args, dispatch.Arg{Key: key, Value: v})
	}
	if v.Kind() == dispatch.KindAbsent {
		return args
	}

	var items []string
	switch prev.Kind() {
	case dispatch.KindSequence:
		items = append(items, prev.Items()...)
	case dispatch.KindScalar:
		items = append(items, prev.String())
	}
	items = append(items, v.String())
	args.Set(key, dispatch.Sequence(items...))
	return args
}
