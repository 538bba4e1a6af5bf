// Package errors provides structured error types for tilegrid.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND: Resource not found
//   - CAPACITY_EXCEEDED, STALE_SESSION, ...: routine engine outcomes
//   - INTERNAL_*: Unexpected internal errors
//
// Capacity, displacement and stale-session outcomes are expected results of
// ordinary interaction. They are returned as values, never raised as panics.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCapacityExceeded, "no room for %s", id)
//	if errors.Is(err, errors.ErrCodeCapacityExceeded) {
//	    // Tell the user the board is full
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidProject, origErr, "decode %s", path)
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidGrid    Code = "INVALID_GRID"
	ErrCodeInvalidTile    Code = "INVALID_TILE"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidProject Code = "INVALID_PROJECT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Placement outcomes
	ErrCodeCapacityExceeded    Code = "CAPACITY_EXCEEDED"
	ErrCodeInvalidDisplacement Code = "INVALID_DISPLACEMENT"
	ErrCodeStaleSession        Code = "STALE_SESSION"
	ErrCodeNoDragSession       Code = "NO_DRAG_SESSION"
	ErrCodeDragInProgress      Code = "DRAG_IN_PROGRESS"
	ErrCodeInvariantViolated   Code = "INVARIANT_VIOLATED"

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

// IsRoutine reports whether err carries one of the codes that describe an
// ordinary rejected gesture or a full board rather than a failure.
func IsRoutine(err error) bool {
	switch GetCode(err) {
	case ErrCodeCapacityExceeded, ErrCodeInvalidDisplacement, ErrCodeStaleSession:
		return true
	}
	return false
}
