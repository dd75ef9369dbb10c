// Package errors provides a lightweight structured error type (WebfontsError)
// for category-based classification and retry semantics in sinks and the CLI.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of an error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Theme settings reading and parsing
	CategoryTheme      ErrorCategory = "theme"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Registration sinks and the systems behind them
	CategoryRegistry ErrorCategory = "registry"
	CategoryNetwork  ErrorCategory = "network"

	// Runtime and infrastructure errors
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// WebfontsError is a structured error with category, retryability, and context
type WebfontsError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for WebfontsError
type ContextFields map[string]any

// Error implements the error interface
func (e *WebfontsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping
func (e *WebfontsError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *WebfontsError) WithContext(key string, value any) *WebfontsError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new WebfontsError
func New(category ErrorCategory, severity ErrorSeverity, message string) *WebfontsError {
	return &WebfontsError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new WebfontsError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *WebfontsError {
	return &WebfontsError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// Retryable creates a new retryable WebfontsError
func Retryable(category ErrorCategory, severity ErrorSeverity, message string) *WebfontsError {
	e := New(category, severity, message)
	e.Retryable = true
	return e
}

// WrapRetryable creates a new retryable WebfontsError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *WebfontsError {
	e := Wrap(err, category, severity, message)
	e.Retryable = true
	return e
}

// As returns the first WebfontsError in err's chain.
func As(err error) (*WebfontsError, bool) {
	var we *WebfontsError
	if stdErrors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if we, ok := As(err); ok {
		return we.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if we, ok := As(err); ok {
		return we.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a WebfontsError
func GetCategory(err error) ErrorCategory {
	if we, ok := As(err); ok {
		return we.Category
	}
	return CategoryInternal
}
