package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig             = "CONFIG"
	ErrUsage              = "USAGE"
	ErrMetricUnavailable  = "METRIC_UNAVAILABLE"
	ErrBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrBackend            = "BACKEND_ERROR"
	ErrStoreCorrupt       = "STORE_CORRUPT"
	ErrStoreWrite         = "STORE_WRITE"
	ErrLock               = "LOCK"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pchErr *Error
	if errors.As(err, &pchErr) {
		return pchErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first structured Error in the chain, or "".
func CodeOf(err error) string {
	var pchErr *Error
	if errors.As(err, &pchErr) {
		return pchErr.Code
	}
	return ""
}

// Summary renders err on one line ("CODE: message: cause"), for logs and
// JSON payloads where the multi-line form doesn't fit.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var pchErr *Error
	if !errors.As(err, &pchErr) {
		return err.Error()
	}
	s := pchErr.Code + ": " + pchErr.Message
	if pchErr.Cause != nil {
		s += ": " + Summary(pchErr.Cause)
	}
	return s
}

// ExitError signals that the process should exit with a specific code
// without printing anything further (the command already reported).
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given exit code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the exit code from an ExitError anywhere in the chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
