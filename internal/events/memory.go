package events

import (
	"context"
	"sync"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/redact"
)

// InMemoryLogger keeps recorded events in memory. It backs tests and
// deployments without a database-backed event log.
type InMemoryLogger struct {
	mu     sync.RWMutex
	events []*domain.Event
	err    error
}

// NewInMemoryLogger creates an empty InMemoryLogger.
func NewInMemoryLogger() *InMemoryLogger {
	return &InMemoryLogger{events: make([]*domain.Event, 0)}
}

var _ Logger = (*InMemoryLogger)(nil)

// FailWith makes subsequent calls return err without recording anything.
func (l *InMemoryLogger) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// CreateEvent implements Logger.
func (l *InMemoryLogger) CreateEvent(
	ctx context.Context,
	eventType domain.EventType,
	title, message string,
	err error,
) error {
	return l.CreateEventWithLevel(ctx, LevelFor(err), eventType, title, message, err)
}

// CreateEventWithLevel implements Logger.
func (l *InMemoryLogger) CreateEventWithLevel(
	_ context.Context,
	level domain.EventLevel,
	eventType domain.EventType,
	title, message string,
	err error,
) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return l.err
	}
	l.events = append(l.events, domain.NewEvent(level, eventType, title, message, redact.Error(err)))
	return nil
}

// Events returns a snapshot of the recorded events in recording order.
func (l *InMemoryLogger) Events() []*domain.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*domain.Event, len(l.events))
	copy(out, l.events)
	return out
}
