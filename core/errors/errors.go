// Package errors defines the structured error taxonomy shared across
// chronicle's core packages.
package errors

import "fmt"

// ErrorKind identifies the category of failure, matching the six kinds
// chronicle's design separates: wrong-type arguments, well-typed-but-invalid
// values, missing entities/attributes, bad merge attempts, unknown model
// types, and digest mismatches on decode.
type ErrorKind string

const (
	KindType              ErrorKind = "TYPE_ERROR"
	KindValue             ErrorKind = "VALUE_ERROR"
	KindKey               ErrorKind = "KEY_ERROR"
	KindMergeFailure      ErrorKind = "MERGE_FAILURE"
	KindUnregisteredModel ErrorKind = "UNREGISTERED_MODEL"
	KindCorruption        ErrorKind = "CORRUPTION"
)

// Error is chronicle's structured error: a kind, a message, an optional
// cause, and free-form context for diagnostics.
type Error struct {
	ErrKind ErrorKind
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.ErrKind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.ErrKind, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Kind returns the error's category.
func (e *Error) Kind() ErrorKind {
	return e.ErrKind
}

// New creates an Error of the given kind with no cause.
func New(kind ErrorKind, message string) *Error {
	return &Error{ErrKind: kind, Message: message, Context: make(map[string]any)}
}

// Wrap creates an Error of the given kind wrapping cause.
func Wrap(kind ErrorKind, message string, cause error) *Error {
	return &Error{ErrKind: kind, Message: message, Cause: cause, Context: make(map[string]any)}
}

// WithContext attaches a diagnostic key/value and returns e for chaining.
func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

// GetContext retrieves a diagnostic value previously attached with WithContext.
func (e *Error) GetContext(key string) (any, bool) {
	v, ok := e.Context[key]
	return v, ok
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind ErrorKind) bool {
	var e *Error
	for err != nil {
		if ce, ok := err.(*Error); ok {
			e = ce
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.ErrKind == kind
}

func NewType(message string) *Error              { return New(KindType, message) }
func NewValue(message string) *Error             { return New(KindValue, message) }
func NewKey(message string) *Error               { return New(KindKey, message) }
func NewMergeFailure(message string) *Error      { return New(KindMergeFailure, message) }
func NewUnregisteredModel(message string) *Error { return New(KindUnregisteredModel, message) }
func NewCorruption(message string) *Error        { return New(KindCorruption, message) }
