// Package errors defines the categorized error type returned by the loader,
// the code generators and the writer.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for better handling
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryReference     ErrorCategory = "reference"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryIO            ErrorCategory = "io"
	CategoryNetwork       ErrorCategory = "network"
	CategoryTemplate      ErrorCategory = "template"
	CategoryInternal      ErrorCategory = "internal"
)

// CodegenError carries the failing operation and its category along with the cause
type CodegenError struct {
	Category  ErrorCategory          `json:"category"`
	Operation string                 `json:"operation"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Cause     error                  `json:"-"`
}

// Error implements the error interface
func (e *CodegenError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Category, e.Operation, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements error unwrapping
func (e *CodegenError) Unwrap() error {
	return e.Cause
}

// New creates a CodegenError without a cause
func New(category ErrorCategory, operation, message string) *CodegenError {
	return &CodegenError{
		Category:  category,
		Operation: operation,
		Message:   message,
	}
}

// Wrap creates a CodegenError around cause. A nil cause yields nil.
func Wrap(cause error, category ErrorCategory, operation, message string) error {
	if cause == nil {
		return nil
	}
	return &CodegenError{
		Category:  category,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// WithContext attaches a key/value pair and returns the same error
func (e *CodegenError) WithContext(key string, value interface{}) *CodegenError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// CategoryOf returns the category of the first CodegenError in err's chain
func CategoryOf(err error) (ErrorCategory, bool) {
	var cgErr *CodegenError
	if errors.As(err, &cgErr) {
		return cgErr.Category, true
	}
	return "", false
}

// IsCategory reports whether err's chain holds a CodegenError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	c, ok := CategoryOf(err)
	return ok && c == category
}

// IsUserError reports whether err was caused by bad input rather than by axiosgen itself
func IsUserError(err error) bool {
	c, ok := CategoryOf(err)
	if !ok {
		return false
	}
	switch c {
	case CategoryValidation, CategoryReference, CategoryConfiguration:
		return true
	}
	return false
}
