// Package fault defines the error taxonomy shared by the routing and claim
// engine. Every error that crosses a package boundary carries one of a small
// set of string codes so callers can branch on the kind of failure without
// parsing messages.
package fault

import (
	"errors"
	"fmt"
)

// Code classifies an engine error. Codes are string-based for debuggability
// and natural JSON serialization.
type Code string

const (
	// CodeNotFound indicates a referenced sheet, item or template does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeConflict indicates a state guard failed: the item is already
	// claimed, already terminal, or the caller lost a claim race.
	CodeConflict Code = "CONFLICT"

	// CodeForbidden indicates the actor is not the owner and holds no
	// overriding permission.
	CodeForbidden Code = "FORBIDDEN"

	// CodeInvalidInput indicates a missing or malformed required field.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeStorage indicates the persistent store could not complete a
	// transaction.
	CodeStorage Code = "STORAGE_ERROR"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown Code = "UNKNOWN"
)

// Error is the concrete error type returned by engine operations.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is a *Error with the same code, so callers can
// match against sentinel-style values: errors.Is(err, &Error{Code: CodeConflict}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New builds an error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. A nil cause
// yields nil so call sites can wrap unconditionally.
func Wrap(cause error, code Code, format string, args ...any) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// NotFound builds a NOT_FOUND error.
func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

// Conflict builds a CONFLICT error.
func Conflict(format string, args ...any) *Error {
	return New(CodeConflict, format, args...)
}

// Forbidden builds a FORBIDDEN error.
func Forbidden(format string, args ...any) *Error {
	return New(CodeForbidden, format, args...)
}

// Invalid builds an INVALID_INPUT error.
func Invalid(format string, args ...any) *Error {
	return New(CodeInvalidInput, format, args...)
}

// Storage wraps a store failure as STORAGE_ERROR.
func Storage(cause error, format string, args ...any) *Error {
	return Wrap(cause, CodeStorage, format, args...)
}

// CodeOf extracts the code from any error. Errors that did not originate in
// this package report CodeUnknown; nil reports the empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
