package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/realtorist/realtorist-api/internal/api"
	"github.com/realtorist/realtorist-api/internal/config"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/events"
	"github.com/realtorist/realtorist-api/internal/feed"
	"github.com/realtorist/realtorist-api/internal/jobs"
	"github.com/realtorist/realtorist-api/internal/platform/gemini"
	"github.com/realtorist/realtorist-api/internal/platform/postgres"
	"github.com/realtorist/realtorist-api/internal/service"
	"github.com/realtorist/realtorist-api/internal/service/auth"
	"github.com/realtorist/realtorist-api/internal/store"
	"github.com/realtorist/realtorist-api/internal/task"
	"golang.org/x/crypto/bcrypt"
)

// application holds the shared dependencies so they can be shut down in order.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	eventStore    store.EventStore
	settingsStore store.SettingsStore
	eventSink     events.Logger

	authService    *auth.Service
	listingService service.ListingService
	updateService  *service.ListingUpdateService
	feedFactory    *feed.Factory

	queue     *task.BackgroundQueue
	worker    *task.Worker
	scheduler *jobs.Scheduler
}

// newApplication wires every component on top of an open database.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.eventStore = postgres.NewPostgresEventStore(db, logger)
	app.settingsStore = postgres.NewPostgresSettingsStore(db, logger)
	app.eventSink = events.NewStoreLogger(app.eventStore, logger)

	if err := app.setupAuth(ctx); err != nil {
		return nil, err
	}

	factoryOpts := []feed.FactoryOption{}
	if cfg.LLM.GeminiAPIKey != "" {
		writer, err := gemini.NewDescriptionWriter(ctx, cfg.LLM, logger.With("component", "description_writer"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize description writer: %w", err)
		}
		factoryOpts = append(factoryOpts, feed.WithDescriber(writer))
		logger.Info("generated listing descriptions enabled", "model", cfg.LLM.ModelName)
	}
	app.feedFactory = feed.NewFactory(logger, factoryOpts...)

	repo := service.NewListingRepositoryAdapter(db, func(conn store.DBTX) store.ListingStore {
		return postgres.NewPostgresListingStore(conn, logger)
	})
	var err error
	app.listingService, err = service.NewListingService(repo, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing service: %w", err)
	}

	scopes := postgres.NewScopeFactory(db, logger)
	app.queue = task.NewBackgroundQueue(cfg.Task.QueueCapacity, logger)
	app.worker = task.NewWorker(app.queue, scopes, app.eventSink, logger)

	feeds := feedConfigs(cfg.Feeds)
	app.updateService, err = service.NewListingUpdateService(feeds, app.feedFactory, app.queue, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing update service: %w", err)
	}

	if cfg.Jobs.Enabled {
		app.scheduler, err = app.setupScheduler(scopes, feeds)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("application initialized successfully")
	return app, nil
}

func (app *application) setupAuth(ctx context.Context) error {
	tokens, err := auth.NewTokenService(app.config.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	app.authService, err = auth.NewService(app.settingsStore, tokens, auth.NewBcryptHasher(bcrypt.DefaultCost), app.logger)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}
	app.logger.Info("authentication initialized",
		"token_lifetime_minutes", app.config.Auth.TokenLifetimeMinutes)

	email, password := app.config.Auth.AdminEmail, app.config.Auth.AdminPassword
	if email == "" || password == "" {
		return nil
	}
	seeded, err := app.authService.Bootstrap(ctx, email, password)
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	if seeded {
		app.logger.Info("admin account seeded from configuration")
	}
	return nil
}

func (app *application) setupScheduler(scopes task.ScopeFactory, feeds []feed.Config) (*jobs.Scheduler, error) {
	loc, err := app.config.Jobs.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load job timezone: %w", err)
	}
	scheduler := jobs.NewScheduler(loc, app.logger)

	if len(feeds) > 0 {
		flow, err := app.feedFactory.NewComposite(feeds)
		if err != nil {
			return nil, fmt.Errorf("failed to build feed flows: %w", err)
		}
		job := jobs.NewListingUpdateJob(scopes, flow, app.eventSink, app.logger)
		if err := scheduler.Register("listing_update", app.config.Jobs.ListingUpdateCron, job); err != nil {
			return nil, err
		}
	} else {
		app.logger.Info("no feeds configured, listing update job not scheduled")
	}

	cleanup := jobs.NewEventsCleanupJob(app.eventStore, app.eventSink, app.logger)
	if err := scheduler.Register("events_cleanup", app.config.Jobs.EventsCleanupCron, cleanup); err != nil {
		return nil, err
	}
	return scheduler, nil
}

// router builds the HTTP handler over the application's services.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Auth:          app.authService,
		Authenticator: app.authService,
		Listings:      app.listingService,
		Updates:       app.updateService,
		Events:        app.eventStore,
		EventSink:     app.eventSink,
		DB:            app.db,
		Queue:         app.queue,
		Worker:        app.worker,
		Logger:        app.logger,
	})
}

// Run starts the worker and scheduler, serves HTTP until ctx is done and
// then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	// The worker outlives the signal context so requests still draining can
	// enqueue; it is stopped explicitly during shutdown.
	app.worker.Start(context.WithoutCancel(ctx))
	if app.scheduler != nil {
		app.scheduler.Start()
	}

	if err := app.startHTTPServer(ctx, app.router()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func feedConfigs(cfgs []config.FeedConfig) []feed.Config {
	out := make([]feed.Config, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, feed.Config{
			ListingSource: domain.ListingSource(c.ListingSource),
			URL:           c.URL,
			Username:      c.Username,
			Password:      c.Password,
		})
	}
	return out
}
