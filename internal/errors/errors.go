package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrInvalidIndex is returned when a move references a position outside the ordering
	ErrInvalidIndex = errors.New("invalid index")

	// ErrMalformedInput is returned when a request body or query cannot be parsed
	ErrMalformedInput = errors.New("malformed input")

	// ErrRecordNotFound is returned when a record id is unknown to the store
	ErrRecordNotFound = errors.New("record not found")

	// ErrRequestFailed is returned by the client transport for non-2xx responses
	ErrRequestFailed = errors.New("request failed")
)

// InvalidIndexError represents a move whose bounds fall outside [0, Length)
type InvalidIndexError struct {
	FromIndex int
	ToIndex   int
	Length    int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("invalid move from %d to %d: indices must be within [0, %d)", e.FromIndex, e.ToIndex, e.Length)
}

func (e *InvalidIndexError) Is(target error) bool {
	return target == ErrInvalidIndex
}

// NewInvalidIndexError creates a new InvalidIndexError
func NewInvalidIndexError(fromIndex, toIndex, length int) *InvalidIndexError {
	return &InvalidIndexError{FromIndex: fromIndex, ToIndex: toIndex, Length: length}
}

// RecordNotFoundError represents a lookup of an unknown record id
type RecordNotFoundError struct {
	ID int
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("record with ID %d not found", e.ID)
}

func (e *RecordNotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}

// NewRecordNotFoundError creates a new RecordNotFoundError
func NewRecordNotFoundError(id int) *RecordNotFoundError {
	return &RecordNotFoundError{ID: id}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMalformedInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// HTTPError represents a non-2xx answer received by the client transport
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrRequestFailed
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}
