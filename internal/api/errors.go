package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/realtorist/realtorist-api/internal/api/shared"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/feed"
	"github.com/realtorist/realtorist-api/internal/service"
	"github.com/realtorist/realtorist-api/internal/service/auth"
	"github.com/realtorist/realtorist-api/internal/store"
	"github.com/realtorist/realtorist-api/internal/task"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrRevokedToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrAccountNotConfigured),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Queue full: retry later
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrReadOnlyListing),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, feed.ErrReservedSource),
		errors.Is(err, feed.ErrInvalidConfig),
		errors.Is(err, service.ErrFeedNotConfigured):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-friendly message for err that does not
// leak internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Wrong email/password"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrRevokedToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrAccountNotConfigured):
		return "Admin account is not configured"
	case errors.Is(err, auth.ErrWrongPassword):
		return "Wrong password"

	case errors.Is(err, store.ErrListingNotFound):
		return "Listing not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"
	case errors.Is(err, store.ErrListingExists):
		return "Listing already exists"

	case errors.Is(err, domain.ErrReadOnlyListing):
		return "Listing can't be changed as it's coming from the MLS"
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, task.ErrQueueFull):
		return "Too many pending background tasks, try again later"
	case errors.Is(err, task.ErrQueueClosed):
		return "Background processing is shutting down"
	case errors.Is(err, service.ErrFeedNotConfigured):
		return "No feed is configured for this listing source"
	case errors.Is(err, feed.ErrReservedSource):
		return "The listing source is reserved"
	case errors.Is(err, feed.ErrInvalidConfig):
		return "Invalid feed configuration"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator output into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "url":
		return "invalid URL"
	case "min", "gt", "gte":
		return "too small"
	case "max", "lt", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err.
// fallback, when non-empty, replaces the message of plain 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
