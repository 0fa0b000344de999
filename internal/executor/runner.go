package executor

import (
	"context"
	"os"
	"slices"

	"github.com/pddkit/pddserve/internal/config"
)

// Runner runs assembled pdd invocations with the configured timeout,
// environment and working directory.
type Runner struct {
	exec        Executor
	locator     *Locator
	root        string
	env         []string
	keyNames    []string
	timeout     int
	autoConfirm []string
}

// NewRunner creates a Runner from the loaded configuration. The child
// environment is computed once here; cfg is not retained.
func NewRunner(cfg *config.Config, e Executor) *Runner {
	return &Runner{
		exec:        e,
		locator:     NewLocator(cfg.Server.Root, cfg.CLI),
		root:        cfg.Server.Root,
		env:         ChildEnv(os.Environ(), cfg.Providers),
		keyNames:    append([]string{cfg.Providers.Primary}, cfg.Providers.Exclusive...),
		timeout:     int(cfg.CLI.Timeout().Milliseconds()),
		autoConfirm: slices.Clone(cfg.CLI.AutoConfirm),
	}
}

// Executable resolves the pdd executable path.
func (r *Runner) Executable() string {
	return r.locator.Resolve()
}

// ProviderKey returns the name of the first configured provider key that
// the child environment carries, primary first.
func (r *Runner) ProviderKey() (string, bool) {
	for _, name := range r.keyNames {
		if name == "" {
			continue
		}
		if v, ok := LookupEnv(r.env, name); ok && v != "" {
			return name, true
		}
	}
	return "", false
}

// TimeoutSeconds returns the configured subprocess timeout in seconds.
func (r *Runner) TimeoutSeconds() int {
	return r.timeout / 1000
}

// Run executes argv, where argv[0] is the executable and argv[1] the pdd
// command. An empty workdir means the server root.
func (r *Runner) Run(ctx context.Context, argv []string, workdir string) ExecuteResponse {
	if len(argv) == 0 {
		return ExecuteResponse{Status: StatusError, ExitCode: -1, Error: "empty command line"}
	}
	args := argv[1:]
	if len(args) > 0 {
		args = WithAutoConfirm(args[0], args, r.autoConfirm)
	}
	if workdir == "" {
		workdir = r.root
	}
	return r.exec.Execute(ctx, ExecuteRequest{
		Command:   argv[0],
		Args:      args,
		Workdir:   workdir,
		Env:       r.env,
		TimeoutMs: r.timeout,
	})
}

// WithAutoConfirm appends --yes to args when command needs confirmation
// and neither --yes nor -y is already present. args is not modified.
func WithAutoConfirm(command string, args []string, confirmCommands []string) []string {
	if !slices.Contains(confirmCommands, command) {
		return args
	}
	if slices.Contains(args, "--yes") || slices.Contains(args, "-y") {
		return args
	}
	out := make([]string, len(args), len(args)+1)
	copy(out, args)
	return append(out, "--yes")
}
