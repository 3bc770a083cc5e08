package errors

import (
	"fmt"
)

// Error is the structured error type for newsdex.
// It carries a stable code for classification plus optional context for
// logging and user presentation.
type Error struct {
	// Code is the unique error code (e.g., "ERR_301_SOURCE_FETCH").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Storage, Source, ...).
	Category Category

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with Error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
// Category and retryable flag are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// OpenIndexError creates an index open/create error.
func OpenIndexError(message string, cause error) *Error {
	return New(ErrCodeOpenIndex, message, cause)
}

// OpenDirectoryError creates an index directory error.
func OpenDirectoryError(message string, cause error) *Error {
	return New(ErrCodeOpenDirectory, message, cause)
}

// SourceFetchError creates an item source error. Source errors are retryable.
func SourceFetchError(message string, cause error) *Error {
	return New(ErrCodeSourceFetch, message, cause)
}

// QuerySyntaxError creates a malformed-query error.
func QuerySyntaxError(message string, cause error) *Error {
	return New(ErrCodeQuerySyntax, message, cause)
}

// MissingFieldError reports a matched document lacking an expected field.
func MissingFieldError(field string) *Error {
	return New(ErrCodeMissingField, fmt.Sprintf("doc missing expected field %s", field), nil).
		WithDetail("field", field)
}

// NotFoundError reports a single-item lookup with no match.
func NotFoundError(message string) *Error {
	return New(ErrCodeNotFound, message, nil)
}

// RebuildActiveError reports a rebuild already running for a category.
func RebuildActiveError(category string) *Error {
	return New(ErrCodeRebuildActive, fmt.Sprintf("rebuild already running for %s", category), nil).
		WithDetail("category", category)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is an Error with the Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// GetCode extracts the error code from an Error.
// Returns empty string if not an Error.
func GetCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// GetCategory extracts the category from an Error.
// Returns empty string if not an Error.
func GetCategory(err error) Category {
	if e, ok := err.(*Error); ok {
		return e.Category
	}
	return ""
}
