// Package errors provides structured error types for blockscape.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the terminal explorer and the API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes are grouped into the three families a user action can fail with:
//
//   - Input validation: INVALID_INPUT, INVALID_RANGE, RANGE_TOO_LARGE.
//     Raised before any state is touched or any request is sent.
//   - Fetch: NETWORK_ERROR, HTTP_STATUS, MALFORMED_PAYLOAD.
//     The previously loaded dataset stays in place.
//   - Empty result: EMPTY_RESULT. The response was valid but held no points.
//
// Use [IsInputValidation], [IsFetch] and [IsEmptyResult] to classify an error
// into its family.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeRangeTooLarge, "range spans %d blocks", n)
//	if errors.IsInputValidation(err) {
//	    // Report immediately, nothing was mutated
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
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
	ErrCodeInvalidRange  Code = "INVALID_RANGE"
	ErrCodeRangeTooLarge Code = "RANGE_TOO_LARGE"

	// Fetch errors
	ErrCodeNetwork          Code = "NETWORK_ERROR"
	ErrCodeHTTPStatus       Code = "HTTP_STATUS"
	ErrCodeMalformedPayload Code = "MALFORMED_PAYLOAD"

	// Empty result
	ErrCodeEmptyResult Code = "EMPTY_RESULT"

	// A fetch replaced by a newer one before its response arrived
	ErrCodeSuperseded Code = "SUPERSEDED"

	// Resource errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// IsInputValidation reports whether err was raised by input validation.
func IsInputValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidRange, ErrCodeRangeTooLarge:
		return true
	}
	return false
}

// IsFetch reports whether err is a network, status or payload failure.
func IsFetch(err error) bool {
	switch GetCode(err) {
	case ErrCodeNetwork, ErrCodeHTTPStatus, ErrCodeMalformedPayload:
		return true
	}
	return false
}

// IsEmptyResult reports whether err signals a valid response with no points.
func IsEmptyResult(err error) bool {
	return Is(err, ErrCodeEmptyResult)
}

// StatusError carries the HTTP status of a failed provider response.
type StatusError struct {
	StatusCode int
	URL        string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Code returns the error code for this error type.
func (e *StatusError) Code() Code {
	return ErrCodeHTTPStatus
}
