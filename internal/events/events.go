package events

import (
	"context"

	"github.com/realtorist/realtorist-api/internal/domain"
)

// Logger records operational events.
type Logger interface {
	// CreateEvent records an event at error level when err is non-nil,
	// info level otherwise.
	CreateEvent(ctx context.Context, eventType domain.EventType, title, message string, err error) error

	// CreateEventWithLevel records an event at an explicit level.
	CreateEventWithLevel(
		ctx context.Context,
		level domain.EventLevel,
		eventType domain.EventType,
		title, message string,
		err error,
	) error
}

// LevelFor returns the level CreateEvent uses for err.
func LevelFor(err error) domain.EventLevel {
	if err != nil {
		return domain.EventLevelError
	}
	return domain.EventLevelInfo
}
