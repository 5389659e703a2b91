// Package errors provides structured error types for partimport.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the batch runner and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Configuration problems (duplicate aliases, references to undefined
// parameters, malformed taxonomy files) carry one of the CONFIG family codes
// and are the only errors that abort an import run. Use [IsConfig] to test
// for the whole family.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateAlias, "alias %q used twice", alias)
//	if errors.IsConfig(err) {
//	    // abort before any resolution starts
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSink, origErr, "write part %s", sku)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors. Fatal: the run stops before resolving anything.
	ErrCodeConfig             Code = "CONFIG_ERROR"
	ErrCodeDuplicateAlias     Code = "DUPLICATE_ALIAS"
	ErrCodeUndefinedParameter Code = "UNDEFINED_PARAMETER"
	ErrCodeInvalidTree        Code = "INVALID_TREE"
	ErrCodeInvalidHook        Code = "INVALID_HOOK"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidSupplier Code = "INVALID_SUPPLIER"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Per-part failures, recorded and never propagated past the batch
	ErrCodeHookFailed Code = "HOOK_FAILED"
	ErrCodeSink       Code = "SINK_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var configCodes = map[Code]bool{
	ErrCodeConfig:             true,
	ErrCodeDuplicateAlias:     true,
	ErrCodeUndefinedParameter: true,
	ErrCodeInvalidTree:        true,
	ErrCodeInvalidHook:        true,
}

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

// IsConfig reports whether err belongs to the configuration error family.
// Unlike [Is], every *Error in the chain is inspected, so a config error
// wrapped in a generic one is still recognized.
func IsConfig(err error) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if configCodes[e.Code] {
			return true
		}
		err = e.Cause
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
