package apperrors

import (
	"errors"
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "VALIDATION"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeStorage        ErrorType = "STORAGE"
	ErrorTypeNetwork        ErrorType = "NETWORK"
	ErrorTypeAuthRequired   ErrorType = "AUTH_REQUIRED"
	ErrorTypeSyncInProgress ErrorType = "SYNC_IN_PROGRESS"
	ErrorTypeEmptySelection ErrorType = "EMPTY_SELECTION"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidation creates a validation error. Never retried.
func NewValidation(message string) error {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewStorage creates a storage error, raised after the persistent
// store failed again following one reconnect attempt.
func NewStorage(message string, err error) error {
	return &AppError{Type: ErrorTypeStorage, Message: message, Err: err}
}

// NewNetwork creates a network error for remote store failures
func NewNetwork(message string, err error) error {
	return &AppError{Type: ErrorTypeNetwork, Message: message, Err: err}
}

// NewAuthRequired signals that no remote identity is configured
func NewAuthRequired() error {
	return &AppError{Type: ErrorTypeAuthRequired, Message: "no authenticated remote identity"}
}

// NewSyncInProgress signals that a full sync is already in flight
func NewSyncInProgress() error {
	return &AppError{Type: ErrorTypeSyncInProgress, Message: "a sync is already in progress"}
}

// NewEmptySelection signals a session selector that matched no cards
func NewEmptySelection(message string) error {
	return &AppError{Type: ErrorTypeEmptySelection, Message: message}
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsStorage checks if an error is a storage error
func IsStorage(err error) bool { return isType(err, ErrorTypeStorage) }

// IsNetwork checks if an error is a network error
func IsNetwork(err error) bool { return isType(err, ErrorTypeNetwork) }

// IsAuthRequired checks if an error is an auth required error
func IsAuthRequired(err error) bool { return isType(err, ErrorTypeAuthRequired) }

// IsSyncInProgress checks if an error is a sync in progress error
func IsSyncInProgress(err error) bool { return isType(err, ErrorTypeSyncInProgress) }

// IsEmptySelection checks if an error is an empty selection error
func IsEmptySelection(err error) bool { return isType(err, ErrorTypeEmptySelection) }
