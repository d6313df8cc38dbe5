package errors

import (
	"errors"
	"fmt"
)

// SeqError is the structured error type for seqdex.
// It carries a stable code so callers can branch on failure class
// without string matching.
type SeqError struct {
	// Code is the unique error code (e.g., "ERR_410_SEQUENCE_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Storage, Index, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *SeqError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SeqError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with SeqError.
func (e *SeqError) Is(target error) bool {
	if t, ok := target.(*SeqError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *SeqError) WithDetail(key, value string) *SeqError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new SeqError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *SeqError {
	return &SeqError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Newf creates a new SeqError with a formatted message.
func Newf(code string, format string, args ...any) *SeqError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates a SeqError from an existing error.
// The error's message becomes the SeqError message.
func Wrap(code string, err error) *SeqError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// InvalidInput creates a validation error.
func InvalidInput(message string) *SeqError {
	return New(ErrCodeInvalidInput, message, nil)
}

// NotFound creates a lookup error for an unknown sequence id.
func NotFound(id string) *SeqError {
	return Newf(ErrCodeNotFound, "sequence %q not found", id).WithDetail("id", id)
}

// StorageFailure creates a persistence error.
func StorageFailure(message string, cause error) *SeqError {
	return New(ErrCodeStorageFailure, message, cause)
}

// Inconsistency creates an index inconsistency error.
func Inconsistency(message string) *SeqError {
	return New(ErrCodeIndexInconsistent, message, nil)
}

// IsNotFound reports whether err is an unknown-id error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsInvalidInput reports whether err is any validation error.
func IsInvalidInput(err error) bool {
	var se *SeqError
	if errors.As(err, &se) {
		return se.Category == CategoryValidation && se.Code != ErrCodeNotFound
	}
	return false
}

// IsInconsistency reports whether err signals a store/index mismatch.
func IsInconsistency(err error) bool {
	return hasCode(err, ErrCodeIndexInconsistent)
}

// IsStorageFailure reports whether err is a persistence error.
func IsStorageFailure(err error) bool {
	var se *SeqError
	if errors.As(err, &se) {
		return se.Category == CategoryStorage
	}
	return false
}

// GetCode extracts the error code from a SeqError anywhere in the chain.
// Returns empty string if no SeqError is present.
func GetCode(err error) string {
	var se *SeqError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func hasCode(err error, code string) bool {
	var se *SeqError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
