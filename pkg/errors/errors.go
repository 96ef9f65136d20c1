// Package errors provides structured error types for pybundle.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, TUI and HTTP front-ends
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes follow the bundling error taxonomy. Only [ErrCodeFatalInput]
// and [ErrCodeOutputIO] stop a run on their own; parse failures and cycles
// are reported and the run continues.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeFatalInput, "entry file not found: %s", path)
//	if errors.Is(err, errors.ErrCodeFatalInput) {
//	    // Nothing was written
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeOutputIO, origErr, "create %s", output)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Run-level conditions
	ErrCodeFatalInput       Code = "FATAL_INPUT"
	ErrCodeParseFailure     Code = "PARSE_FAILURE"
	ErrCodeUnresolvedImport Code = "UNRESOLVED_IMPORT"
	ErrCodeCycleDetected    Code = "CYCLE_DETECTED"
	ErrCodeOutputIO         Code = "OUTPUT_IO"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Detail returns the user message followed by the underlying cause, for
// logs and error events where the full chain is wanted.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return UserMessage(err)
}

// As is errors.As, re-exported so callers importing this package under
// the name errors keep access to it.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Fatal reports whether err stops a bundling run on its own
// (missing entry file or unwritable output).
func Fatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeFatalInput, ErrCodeOutputIO:
		return true
	}
	return false
}
