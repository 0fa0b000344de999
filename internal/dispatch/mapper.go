package dispatch

import (
	"strings"

	"github.com/pddkit/pddserve/internal/executor"
)

const unknownErrorMessage = "Unknown error occurred"

// LooksNotFound reports whether an error text suggests the executable is
// missing: "No such file or directory", or "not found" in any case.
// Best effort; pdd's own "not found" diagnostics match as well.
func LooksNotFound(msg string) bool {
	return strings.Contains(msg, "No such file or directory") ||
		strings.Contains(strings.ToLower(msg), "not found")
}

func notFoundMessage(original string) string {
	return "PDD CLI tool not found. Please ensure 'pdd' is installed and available in PATH. Original error: " + original
}

// ResultError classifies an executor result for command. It returns nil
// when the command exited 0.
func ResultError(command string, res executor.ExecuteResponse, timeoutSeconds int) *Error {
	var e *Error
	switch res.Status {
	case executor.StatusCompleted:
		if res.Succeeded() {
			return nil
		}
		msg := res.Stderr
		if msg == "" {
			msg = unknownErrorMessage
		}
		e = &Error{Kind: KindNonZeroExit, Message: msg}
	case executor.StatusTimeout:
		e = newError(KindExecutionTimeout, nil, "PDD %s timed out after %d seconds", command, timeoutSeconds)
	case executor.StatusNotFound:
		e = newError(KindExecutableNotFound, nil, "Error executing PDD %s: %s", command, res.Error)
	default:
		e = newError(KindInternalError, nil, "Error executing PDD %s: %s", command, res.Error)
	}

	if e.Kind == KindExecutableNotFound || LooksNotFound(e.Message) {
		e.Kind = KindExecutableNotFound
		e.Message = notFoundMessage(e.Message)
	}
	return e
}

// FailureFrom converts a registry or assembler error into a Response.
func FailureFrom(err error) Response {
	return Failure(err.Error())
}
