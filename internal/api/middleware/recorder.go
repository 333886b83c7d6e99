package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/realtorist/realtorist-api/internal/api/shared"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/events"
	"github.com/realtorist/realtorist-api/internal/platform/logger"
)

// Titles of the events written by Recorder.
const (
	FailureEventTitle  = "An error has occurred"
	NotFoundEventTitle = "URL not found"
)

// Recorder writes server failures and unmatched URLs to the event log.
type Recorder struct {
	sink   events.Logger
	logger *slog.Logger
}

// NewRecorder creates a Recorder writing to sink.
func NewRecorder(sink events.Logger, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		sink:   sink,
		logger: logger.With("component", "event_recorder"),
	}
}

// Middleware recovers panics and records every 5xx response as a generic
// event. A panic is answered with a 500 JSON error when nothing has been
// written yet.
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, failure := shared.WithFailure(r.Context())
		r = r.WithContext(ctx)
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				err := fmt.Errorf("panic: %v", p)
				logger.FromContextOrDefault(r.Context(), rec.logger).Error("recovered from panic in handler",
					slog.Any("panic", p),
					slog.String("path", r.URL.Path))
				if ww.Status() == 0 {
					shared.RespondWithError(ww, r, http.StatusInternalServerError, "An unexpected error occurred")
				}
				rec.recordFailure(r, http.StatusInternalServerError, err)
				return
			}

			if status := ww.Status(); status >= http.StatusInternalServerError {
				rec.recordFailure(r, status, failure.Err())
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

// NotFound answers unmatched routes with 404 and records a url_not_found warning.
func (rec *Recorder) NotFound(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("Requested page wasn't found.\nRequest: %s\nStatus code: %d\nUser-Agent: %s",
		r.URL.RequestURI(), http.StatusNotFound, userAgent(r))
	rec.record(r, domain.EventLevelWarning, domain.EventTypeURLNotFound, NotFoundEventTitle, message, nil)

	shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
}

func (rec *Recorder) recordFailure(r *http.Request, status int, err error) {
	message := fmt.Sprintf("An exception occurred on the website.\nRequest: %s\nStatus code: %d\nUser-Agent: %s",
		r.URL.RequestURI(), status, userAgent(r))
	rec.record(r, domain.EventLevelError, domain.EventTypeGeneric, FailureEventTitle, message, err)
}

func (rec *Recorder) record(
	r *http.Request,
	level domain.EventLevel,
	eventType domain.EventType,
	title, message string,
	err error,
) {
	if rec.sink == nil {
		return
	}
	log := logger.FromContextOrDefault(r.Context(), rec.logger)
	defer func() {
		if p := recover(); p != nil {
			log.Error("event sink panicked", "panic", p)
		}
	}()
	ctx := context.WithoutCancel(r.Context())
	if sinkErr := rec.sink.CreateEventWithLevel(ctx, level, eventType, title, message, err); sinkErr != nil {
		log.Warn("failed to record request event", "error", sinkErr)
	}
}

func userAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return "N/A"
}
