package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes for grove. Every user-facing failure exits with ExitFailure;
// the Kind carries the finer classification.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Kind classifies a GroveError.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not-found"
	KindConflict     Kind = "conflict"
	KindAmbiguous    Kind = "ambiguous-target"
	KindExternalTool Kind = "external-tool"
	KindConfig       Kind = "config"
	KindGeneral      Kind = "general"
)

// GroveError is the base error type for grove
type GroveError struct {
	Kind    Kind
	Code    int
	Message string
	Hint    string
	Cause   error
}

func (e *GroveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *GroveError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *GroveError) ExitCode() int {
	return e.Code
}

// WithHint attaches a remediation hint shown below the error message.
func (e *GroveError) WithHint(format string, args ...any) *GroveError {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// New creates a new GroveError
func New(kind Kind, message string) *GroveError {
	return &GroveError{
		Kind:    kind,
		Code:    ExitFailure,
		Message: message,
	}
}

// Wrap wraps an existing error with a GroveError
func Wrap(kind Kind, message string, cause error) *GroveError {
	return &GroveError{
		Kind:    kind,
		Code:    ExitFailure,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError returns an error for bad or missing arguments
func ValidationError(format string, args ...any) *GroveError {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

// WorkspaceNotFound returns an error for a missing workspace. The known
// names, if any, are listed in the hint.
func WorkspaceNotFound(name string, known []string) *GroveError {
	err := New(KindNotFound, fmt.Sprintf("workspace not found: %s", name))
	if len(known) > 0 {
		err.WithHint("known workspaces: %s", strings.Join(known, ", "))
	} else {
		err.WithHint("no workspaces exist yet; create one with: grove start <name>")
	}
	return err
}

// NotFound returns a generic not-found error
func NotFound(what, name string) *GroveError {
	return New(KindNotFound, fmt.Sprintf("%s not found: %s", what, name))
}

// NameConflict returns an error when a workspace name is already taken
func NameConflict(name string) *GroveError {
	return New(KindConflict, fmt.Sprintf("workspace already exists: %s", name)).
		WithHint("resume it with: grove resume %s", name)
}

// AmbiguousTarget returns an error when the target workspace cannot be
// derived from the caller's location
func AmbiguousTarget(message string) *GroveError {
	return New(KindAmbiguous, message)
}

// ExternalTool returns an error for a subprocess that exited non-zero.
// The tool's own output is included verbatim.
func ExternalTool(tool, op string, output []byte, cause error) *GroveError {
	msg := fmt.Sprintf("%s %s failed", tool, op)
	if out := strings.TrimSpace(string(output)); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	return Wrap(KindExternalTool, msg, cause)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *GroveError {
	return Wrap(KindConfig, message, cause)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var groveErr *GroveError
	if errors.As(err, &groveErr) {
		return groveErr.ExitCode()
	}
	return ExitFailure
}

// KindOf returns the Kind of the first GroveError in err's chain, or
// KindGeneral if there is none.
func KindOf(err error) Kind {
	var groveErr *GroveError
	if errors.As(err, &groveErr) {
		return groveErr.Kind
	}
	return KindGeneral
}

// HintOf returns the remediation hint of the first GroveError in err's chain.
func HintOf(err error) string {
	var groveErr *GroveError
	if errors.As(err, &groveErr) {
		return groveErr.Hint
	}
	return ""
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
