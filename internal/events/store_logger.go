package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/redact"
	"github.com/realtorist/realtorist-api/internal/store"
)

// StoreLogger writes events through a store.EventStore.
type StoreLogger struct {
	store  store.EventStore
	logger *slog.Logger
}

// NewStoreLogger creates a StoreLogger. If logger is nil, slog.Default() is used.
func NewStoreLogger(eventStore store.EventStore, logger *slog.Logger) *StoreLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreLogger{
		store:  eventStore,
		logger: logger.With("component", "event_logger"),
	}
}

var _ Logger = (*StoreLogger)(nil)

// CreateEvent implements Logger.
func (l *StoreLogger) CreateEvent(
	ctx context.Context,
	eventType domain.EventType,
	title, message string,
	err error,
) error {
	return l.CreateEventWithLevel(ctx, LevelFor(err), eventType, title, message, err)
}

// CreateEventWithLevel implements Logger. Error text is redacted before it is stored.
// A failing store is logged and reported back, never panics through.
func (l *StoreLogger) CreateEventWithLevel(
	ctx context.Context,
	level domain.EventLevel,
	eventType domain.EventType,
	title, message string,
	err error,
) (result error) {
	defer func() {
		if p := recover(); p != nil {
			l.logger.Error("event store panicked", "panic", p, "event_type", eventType)
			result = fmt.Errorf("event store panicked: %v", p)
		}
	}()

	event := domain.NewEvent(level, eventType, title, message, redact.Error(err))
	if storeErr := l.store.Create(ctx, event); storeErr != nil {
		l.logger.Error("failed to record event",
			"error", storeErr,
			"event_type", eventType,
			"title", title)
		return fmt.Errorf("failed to record event: %w", storeErr)
	}

	l.logger.Debug("event recorded",
		"event_id", event.ID,
		"event_type", eventType,
		"level", level)
	return nil
}
