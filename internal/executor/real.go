package executor

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"time"
)

// defaultWaitDelay bounds how long Execute waits for output pipes to close
// after the child has been killed. Grandchildren that inherited stdout
// would otherwise keep Run blocked past the timeout.
const defaultWaitDelay = 2 * time.Second

// RealExecutor executes commands using os/exec.
type RealExecutor struct {
	waitDelay time.Duration
}

// NewRealExecutor creates a new RealExecutor.
func NewRealExecutor() *RealExecutor {
	return &RealExecutor{waitDelay: defaultWaitDelay}
}

// Execute runs a command and returns the result.
func (e *RealExecutor) Execute(ctx context.Context, req ExecuteRequest) ExecuteResponse {
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, req.Command, req.Args...)
	cmd.WaitDelay = e.waitDelay

	if req.Workdir != "" {
		cmd.Dir = req.Workdir
	}
	if req.Env != nil {
		cmd.Env = req.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || ctx.Err() == context.Canceled {
			return ExecuteResponse{
				Status:   StatusTimeout,
				ExitCode: -1,
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				Error:    "command timed out",
				Duration: elapsed,
			}
		}

		// exec.Error comes from the PATH lookup of a bare name; ENOENT from
		// starting an absolute path that does not exist.
		var execErr *exec.Error
		if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
			return ExecuteResponse{
				Status:   StatusNotFound,
				ExitCode: -1,
				Error:    err.Error(),
				Duration: elapsed,
			}
		}

		// Command ran but returned non-zero
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ExecuteResponse{
				Status:   StatusCompleted,
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				Duration: elapsed,
			}
		}

		// Other errors (e.g., permission denied)
		return ExecuteResponse{
			Status:   StatusError,
			ExitCode: -1,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Error:    err.Error(),
			Duration: elapsed,
		}
	}

	return ExecuteResponse{
		Status:   StatusCompleted,
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}
}
