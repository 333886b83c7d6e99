package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/events"
	"github.com/realtorist/realtorist-api/internal/feed"
	"github.com/realtorist/realtorist-api/internal/platform/logger"
	"github.com/realtorist/realtorist-api/internal/task"
)

// FlowFactory builds the feed flow for one configuration.
type FlowFactory interface {
	New(cfg feed.Config) (feed.Flow, error)
}

// ListingUpdateService queues on-demand feed updates for the background worker.
type ListingUpdateService struct {
	feeds  map[domain.ListingSource]feed.Config
	flows  FlowFactory
	queue  task.Enqueuer
	logger *slog.Logger
}

// NewListingUpdateService creates a ListingUpdateService. feeds are the
// configured feeds an update request may refer to by source alone.
func NewListingUpdateService(
	feeds []feed.Config,
	flows FlowFactory,
	queue task.Enqueuer,
	logger *slog.Logger,
) (*ListingUpdateService, error) {
	if flows == nil {
		return nil, domain.NewValidationError("flows", "cannot be nil", domain.ErrValidation)
	}
	if queue == nil {
		return nil, domain.NewValidationError("queue", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	known := make(map[domain.ListingSource]feed.Config, len(feeds))
	for _, cfg := range feeds {
		known[cfg.ListingSource] = cfg
	}
	return &ListingUpdateService{
		feeds:  known,
		flows:  flows,
		queue:  queue,
		logger: logger.With(slog.String("component", "listing_update_service")),
	}, nil
}

// RequestUpdate validates req and queues a task that runs its feed flow.
// When req has no URL, the configured feed for req.ListingSource is used.
// The call returns once the task is queued; task.ErrQueueFull is returned
// when the queue has no room.
func (s *ListingUpdateService) RequestUpdate(ctx context.Context, req feed.Config) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if req.ListingSource == "" {
		return domain.NewValidationError("listing_source", "cannot be empty", nil)
	}
	cfg := req
	if cfg.URL == "" {
		known, ok := s.feeds[req.ListingSource]
		if !ok {
			return fmt.Errorf("%w: %q", ErrFeedNotConfigured, req.ListingSource)
		}
		cfg = known
	}

	flow, err := s.flows.New(cfg)
	if err != nil {
		return err
	}

	if err := s.queue.Enqueue(updateTask(cfg.ListingSource, flow)); err != nil {
		log.Warn("failed to queue listing update",
			slog.String("source", string(cfg.ListingSource)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to queue listing update: %w", err)
	}

	log.Info("queued listing update", slog.String("source", string(cfg.ListingSource)))
	return nil
}

// updateTask records its own failure event, so it never reports an error to
// the worker.
func updateTask(source domain.ListingSource, flow feed.Flow) task.Task {
	return func(ctx context.Context, scope task.Scope) error {
		log := scope.Logger().With(slog.String("source", string(source)))

		result, err := flow.Launch(ctx, scope.Listings())
		if err != nil {
			message := fmt.Sprintf("Failed to update listings from %s", source)
			log.Error(message, slog.String("error", err.Error()))

			sink := events.NewStoreLogger(scope.Events(), log)
			if sinkErr := sink.CreateEvent(ctx, domain.EventTypeGeneric, message, message, err); sinkErr != nil {
				log.Warn("failed to record listing update failure", slog.String("error", sinkErr.Error()))
			}
			return nil
		}

		log.Info("listing update finished",
			slog.Int("fetched", result.Fetched),
			slog.Int("upserted", result.Upserted),
			slog.Int("inserted", result.Inserted),
			slog.Int("skipped", result.Skipped),
			slog.Int64("removed", result.Removed))
		return nil
	}
}
