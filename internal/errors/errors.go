// Package errors defines the structured error type shared by every trayd
// component. The Code doubles as the error code reported to the host over
// the bridge.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig         = "CONFIG"
	ErrInvalidArgs    = "INVALID_ARGS"
	ErrNotFound       = "NOT_FOUND"
	ErrPermission     = "PERMISSION"
	ErrUnavailable    = "UNAVAILABLE"
	ErrRegistration   = "EVENT_TAP_FAILED"
	ErrBridge         = "BRIDGE"
	ErrNotImplemented = "NOT_IMPLEMENTED"
)

// Error is a failure with a machine-readable code, a human message, an
// optional hint on how to recover and an optional cause.
//
// Rendered form:
//
//	✗ <what failed>
//
//	  <cause>
//
//	  <suggestion>
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

// Newf creates an error with a formatted message and no suggestion.
func Newf(code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with a message. The code is inherited from
// err when it is itself structured, otherwise ErrUnavailable is used.
func Wrap(err error, message string) *Error {
	code := ErrUnavailable
	var inner *Error
	if errors.As(err, &inner) {
		code = inner.Code
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
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

// InvalidArgs reports a malformed bridge request.
func InvalidArgs(format string, args ...interface{}) *Error {
	return Newf(ErrInvalidArgs, format, args...)
}

// NotImplemented reports a bridge method nobody handles.
func NotImplemented(channel, method string) *Error {
	return &Error{
		Code:    ErrNotImplemented,
		Message: fmt.Sprintf("method %s/%s is not implemented", channel, method),
	}
}

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
	return CodeOf(err) == code && err != nil
}

// CodeOf returns the code of the outermost structured error in err's chain,
// or the empty string.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Summary returns a single-line description suitable for wire payloads.
func Summary(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + Summary(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// SuggestionOf returns the suggestion of the outermost structured error in
// err's chain, or the empty string.
func SuggestionOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Suggestion
	}
	return ""
}
