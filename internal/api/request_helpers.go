package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/realtorist/realtorist-api/internal/domain"
)

// Pagination defaults and bounds.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// pagination reads the 1-based page and limit query parameters.
type pagination struct {
	Page  int
	Limit int
}

func (p pagination) offset() int {
	return (p.Page - 1) * p.Limit
}

func getPagination(r *http.Request) (pagination, error) {
	p := pagination{Page: 1, Limit: DefaultPageLimit}
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, domain.NewValidationError("page", "must be a positive integer", nil)
		}
		p.Page = page
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxPageLimit {
			return p, domain.NewValidationError("limit", "must be between 1 and 100", nil)
		}
		p.Limit = limit
	}
	return p, nil
}

// getOptionalBool parses a boolean query parameter; absent means nil.
func getOptionalBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be a boolean", nil)
	}
	return &v, nil
}
