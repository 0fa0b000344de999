package cmd

import "fmt"

// ExitCodeError carries a process exit code out of a command. The command
// has already reported the failure, so Execute prints nothing for it.
type ExitCodeError struct {
	Code int
}

// NewExitCodeError returns an ExitCodeError with the given code.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}
