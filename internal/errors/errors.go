// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrInvalidArgument indicates caller input failed validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpstreamTimeout indicates an external dependency exceeded its deadline.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrMissingArtifact indicates a required menu artifact does not exist
	// on the messaging platform. Fatal during bootstrap, reported otherwise.
	ErrMissingArtifact = errors.New("missing menu artifact")

	// ErrConsistencyViolation indicates stored state no longer matches an
	// invariant (e.g. a user record carrying an unsupported language).
	ErrConsistencyViolation = errors.New("consistency violation")

	// ErrContextCanceled indicates context was canceled.
	ErrContextCanceled = errors.New("context canceled")
)

// IsInvalidArgument reports whether err wraps ErrInvalidArgument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsUpstreamTimeout reports whether err wraps ErrUpstreamTimeout.
func IsUpstreamTimeout(err error) bool {
	return errors.Is(err, ErrUpstreamTimeout)
}

// IsMissingArtifact reports whether err wraps ErrMissingArtifact.
func IsMissingArtifact(err error) bool {
	return errors.Is(err, ErrMissingArtifact)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// SyncError represents a failed rich menu synchronization attempt.
// The user's stored menu pointer is left unchanged when this is returned.
type SyncError struct {
	UserID string
	MenuID string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("menu sync failed (user=%s, menu=%s): %v", e.UserID, e.MenuID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError creates a new menu sync error.
func NewSyncError(userID, menuID string, err error) *SyncError {
	return &SyncError{
		UserID: userID,
		MenuID: menuID,
		Err:    err,
	}
}

// UpstreamError represents a failed call to an external service with context.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream error (service=%s, status=%d): %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream error (service=%s): %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(service string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{
		Service:    service,
		StatusCode: statusCode,
		Err:        err,
	}
}
