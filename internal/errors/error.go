package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryConfig    Category = "config"
	CategoryTransport Category = "transport"
	CategoryCLI       Category = "cli"
)

// PageError is a structured error with a code, an explanation and a hint.
type PageError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of this occurrence.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *PageError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *PageError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a PageError with the same code.
func (e *PageError) Is(target error) bool {
	t, ok := target.(*PageError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithDetail adds a detailed explanation to the error.
func (e *PageError) WithDetail(d string) *PageError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted explanation to the error.
func (e *PageError) WithDetailf(format string, args ...any) *PageError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *PageError) WithSuggestion(s string) *PageError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *PageError) Wrap(err error) *PageError {
	e.Wrapped = err
	return e
}

// New creates a PageError from a registered error code.
func New(code string) *PageError {
	template, ok := registry[code]
	if !ok {
		return &PageError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &PageError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
	}
}
