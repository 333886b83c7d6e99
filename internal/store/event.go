package store

import (
	"context"
	"time"

	"github.com/realtorist/realtorist-api/internal/domain"
)

// EventStore defines the interface for event log persistence.
type EventStore interface {
	Create(ctx context.Context, event *domain.Event) error

	// List returns events newest first along with the total count.
	List(ctx context.Context, limit, offset int) ([]*domain.Event, int64, error)

	// DeleteAll clears the log and reports how many events were removed.
	DeleteAll(ctx context.Context) (int64, error)

	// DeleteOlderThan removes events created before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
