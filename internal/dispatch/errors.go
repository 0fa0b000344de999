package dispatch

import (
	"errors"
	"fmt"
)

// Kind classifies a dispatch failure. Kinds are errors themselves so that
// errors.Is(err, KindUnknownCommand) works on any wrapped *Error.
type Kind string

// Failure kinds.
const (
	KindUnknownCommand       Kind = "UnknownCommand"
	KindPromptFileNotFound   Kind = "PromptFileNotFound"
	KindPromptFileWriteError Kind = "PromptFileWriteError"
	KindExecutableNotFound   Kind = "ExecutableNotFound"
	KindExecutionTimeout     Kind = "ExecutionTimeout"
	KindNonZeroExit          Kind = "NonZeroExit"
	KindFilesystemError      Kind = "FilesystemError"
	KindInternalError        Kind = "InternalError"
)

func (k Kind) Error() string { return string(k) }

// Error is a classified failure. Message is the user-visible text.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is matches e against a Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the Kind of err, or KindInternalError for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternalError
}
