package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/events"
	"github.com/realtorist/realtorist-api/internal/feed"
	"github.com/realtorist/realtorist-api/internal/task"
)

// ListingUpdateTitle is recorded when a scheduled listings update fails.
const ListingUpdateTitle = "An error has occurred during listings update"

// ListingUpdateJob runs the feed flows for every configured source.
type ListingUpdateJob struct {
	scopes task.ScopeFactory
	flow   feed.Flow
	sink   events.Logger
	logger *slog.Logger
}

// NewListingUpdateJob creates a ListingUpdateJob.
func NewListingUpdateJob(scopes task.ScopeFactory, flow feed.Flow, sink events.Logger, logger *slog.Logger) *ListingUpdateJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingUpdateJob{
		scopes: scopes,
		flow:   flow,
		sink:   sink,
		logger: logger.With("job", "listing_update"),
	}
}

// Run implements Job. Failures are recorded as listing_update events.
func (j *ListingUpdateJob) Run(ctx context.Context) error {
	j.logger.Info("starting listings update")

	scope, err := j.scopes.NewScope(ctx)
	if err != nil {
		err = fmt.Errorf("failed to open scope: %w", err)
		j.report(ctx, err)
		return err
	}
	defer func() {
		if err := scope.Close(); err != nil {
			j.logger.Warn("failed to close scope", "error", err)
		}
	}()

	result, err := j.flow.Launch(ctx, scope.Listings())
	if err != nil {
		j.report(ctx, err)
		return err
	}

	j.logger.Info("listings update finished",
		"upserted", result.Upserted,
		"removed", result.Removed,
		"skipped", result.Skipped)
	return nil
}

func (j *ListingUpdateJob) report(ctx context.Context, err error) {
	reportEvent(ctx, j.sink, j.logger, domain.EventTypeListingUpdate, ListingUpdateTitle, ListingUpdateTitle, err)
}

// reportEvent records a failure event, swallowing sink errors and panics.
func reportEvent(
	ctx context.Context,
	sink events.Logger,
	logger *slog.Logger,
	eventType domain.EventType,
	title, message string,
	err error,
) {
	if sink == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("event sink panicked", "panic", p)
		}
	}()
	if sinkErr := sink.CreateEvent(ctx, eventType, title, message, err); sinkErr != nil {
		logger.Warn("failed to record job failure event", "error", sinkErr)
	}
}
