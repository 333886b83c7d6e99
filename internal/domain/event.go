package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventLevel is the severity of an operational event.
type EventLevel string

// Event levels.
const (
	EventLevelInfo    EventLevel = "info"
	EventLevelWarning EventLevel = "warning"
	EventLevelError   EventLevel = "error"
)

// EventType groups events by the subsystem that raised them.
type EventType string

// Event types.
const (
	EventTypeGeneric       EventType = "generic"
	EventTypeListingUpdate EventType = "listing_update"
	EventTypeURLNotFound   EventType = "url_not_found"
)

// Event is an entry in the admin-facing event log.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	Level     EventLevel `json:"level"`
	Type      EventType  `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewEvent creates an event stamped with the current UTC time.
func NewEvent(level EventLevel, eventType EventType, title, message, errText string) *Event {
	return &Event{
		ID:        uuid.New(),
		Level:     level,
		Type:      eventType,
		Title:     title,
		Message:   message,
		Error:     errText,
		CreatedAt: time.Now().UTC(),
	}
}
