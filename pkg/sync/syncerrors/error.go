package syncerrors

import (
	"fmt"
)

// Error is the concrete error type returned across the synchronization
// engine. It carries a stable Code, a human-readable Message, the Path that
// failed (if any), an OS-level FSCode hint (e.g. "ENOSPC"), and the
// underlying error for Unwrap.
type Error struct {
	Code    Code
	Message string
	Path    string
	FSCode  string
	Err     error

	partial PartialResult
}

// Error implements the error interface.
func (e *Error) Error() string {
	hint := HintForFSCode(e.FSCode)
	switch {
	case e.Path != "" && hint != "":
		return fmt.Sprintf("%s: %s (%s): %s", e.Code, e.Path, e.Message, hint)
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap allows errors.As/errors.Is to see through to the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an Error with no associated path or OS error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap constructs an Error that wraps an underlying error, attaching the
// failing path and deriving an FSCode hint where possible.
func Wrap(code Code, message, path string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Path:    path,
		FSCode:  FSCodeFromError(err),
		Err:     err,
	}
}

// PartialResult is attached to an aborting run's error via WithPartial
// so that callers can recover whatever progress was made.
type PartialResult interface{}

// WithPartial returns a shallow copy of e carrying the given partial result
// in Partial.
func (e *Error) WithPartial(partial PartialResult) *Error {
	clone := *e
	clone.partial = partial
	return &clone
}

// Partial returns the partial result attached via WithPartial, or nil.
func (e *Error) Partial() PartialResult {
	return e.partial
}
