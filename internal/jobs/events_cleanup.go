package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/events"
	"github.com/realtorist/realtorist-api/internal/store"
)

// EventRetentionMonths is how long events are kept.
const EventRetentionMonths = 3

// Titles recorded when the cleanup fails.
const (
	EventsCleanupTitle   = "An error has occurred during events cleanup"
	EventsCleanupMessage = "An error occurred while cleaning up old events"
)

// EventsCleanupJob deletes events older than EventRetentionMonths.
type EventsCleanupJob struct {
	events store.EventStore
	sink   events.Logger
	logger *slog.Logger
	now    func() time.Time
}

// NewEventsCleanupJob creates an EventsCleanupJob.
func NewEventsCleanupJob(eventStore store.EventStore, sink events.Logger, logger *slog.Logger) *EventsCleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsCleanupJob{
		events: eventStore,
		sink:   sink,
		logger: logger.With("job", "events_cleanup"),
		now:    time.Now,
	}
}

// Run implements Job.
func (j *EventsCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, -EventRetentionMonths, 0)

	removed, err := j.events.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		err = fmt.Errorf("failed to clean up old events: %w", err)
		reportEvent(ctx, j.sink, j.logger, domain.EventTypeGeneric, EventsCleanupTitle, EventsCleanupMessage, err)
		return err
	}

	j.logger.Info("old events removed", "count", removed, "cutoff", cutoff)
	return nil
}
