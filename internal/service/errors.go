package service

import (
	"errors"
	"fmt"
)

// Common service errors. The API layer maps these to HTTP status codes.
var (
	// ErrFeedNotConfigured indicates an update was requested for a listing
	// source that has no configured feed and no inline feed settings.
	// API layer should map this to HTTP 400 Bad Request.
	ErrFeedNotConfigured = errors.New("no feed is configured for the listing source")
)

// ServiceError wraps a failure with the service and operation it came from.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Err: err}
}
