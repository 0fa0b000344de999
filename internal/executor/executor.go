// Package executor runs the wrapped pdd executable: it locates the binary,
// prepares the child environment and runs one bounded subprocess per call.
package executor

import (
	"context"
	"time"
)

// Executor executes commands on the host system.
type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) ExecuteResponse
}

// ExecuteRequest contains the command execution parameters.
type ExecuteRequest struct {
	Command string
	Args    []string
	Workdir string
	// Env is the complete child environment. Nil inherits the parent's.
	Env       []string
	TimeoutMs int
}

// ExecuteResponse contains the result of command execution.
// A non-zero exit is a normal outcome: Status is StatusCompleted and
// ExitCode carries the code.
type ExecuteResponse struct {
	Status   string // StatusCompleted, StatusTimeout, StatusNotFound or StatusError
	ExitCode int
	Stdout   string
	Stderr   string
	Error    string
	Duration time.Duration
}

// Status constants for ExecuteResponse.Status.
const (
	StatusCompleted = "completed"
	StatusTimeout   = "timeout"
	StatusNotFound  = "not_found"
	StatusError     = "error"
)

// Succeeded reports whether the command ran to completion with exit code 0.
func (r ExecuteResponse) Succeeded() bool {
	return r.Status == StatusCompleted && r.ExitCode == 0
}
