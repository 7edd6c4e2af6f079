// Package store defines the persistence interface for the BookDen bot.
package store

import "fmt"

// Error is a typed domain error returned by repository operations.
type Error struct {
	Message string // User-facing message
	Err     error  // Underlying error (optional)

	parent *Error // sentinel this error derives from, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes sentinel comparisons with errors.Is work across WithMessage
// and WithCause copies: two *Errors match when one derives from the other.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || e.parent == t
}

// WithMessage returns a copy of the error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Message: msg, Err: e.Err, parent: e.root()}
}

// WithCause returns a copy of the error wrapping an underlying cause.
func (e *Error) WithCause(err error) *Error {
	return &Error{Message: e.Message, Err: err, parent: e.root()}
}

func (e *Error) root() *Error {
	if e.parent != nil {
		return e.parent
	}
	return e
}

// Sentinel errors.
var (
	ErrNotFound = &Error{Message: "not found"}

	ErrAlreadyExists = &Error{Message: "already exists"}

	ErrInvalidInput = &Error{Message: "invalid input"}
)
