package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/realtorist/realtorist-api/internal/api/shared"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderRecordsServerErrors(t *testing.T) {
	sink := events.NewInMemoryLogger()
	rec := NewRecorder(sink, nil)

	handler := rec.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "An unexpected error occurred",
			errors.New("query failed"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/listings?page=2", nil)
	req.Header.Set("User-Agent", "curl/8")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	recorded := sink.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, domain.EventTypeGeneric, recorded[0].Type)
	assert.Equal(t, domain.EventLevelError, recorded[0].Level)
	assert.Equal(t, FailureEventTitle, recorded[0].Title)
	assert.Contains(t, recorded[0].Message, "/api/admin/listings?page=2")
	assert.Contains(t, recorded[0].Message, "curl/8")
	assert.Equal(t, "query failed", recorded[0].Error)
}

func TestRecorderIgnoresClientErrors(t *testing.T) {
	sink := events.NewInMemoryLogger()
	handler := NewRecorder(sink, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "nope")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, sink.Events())
}

func TestRecorderRecoversPanics(t *testing.T) {
	sink := events.NewInMemoryLogger()
	handler := NewRecorder(sink, nil).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/listings", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	recorded := sink.Events()
	require.Len(t, recorded, 1)
	assert.Contains(t, recorded[0].Error, "nil map write")
}

func TestRecorderSurvivesSinkFailure(t *testing.T) {
	sink := events.NewInMemoryLogger()
	sink.FailWith(errors.New("event store down"))
	handler := NewRecorder(sink, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRecorderNotFound(t *testing.T) {
	sink := events.NewInMemoryLogger()
	rec := NewRecorder(sink, nil)

	w := httptest.NewRecorder()
	rec.NotFound(w, httptest.NewRequest(http.MethodGet, "/missing/page", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	recorded := sink.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, domain.EventTypeURLNotFound, recorded[0].Type)
	assert.Equal(t, domain.EventLevelWarning, recorded[0].Level)
	assert.Contains(t, recorded[0].Message, "User-Agent: N/A")
}
