package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/realtorist/realtorist-api/internal/api/middleware"
	"github.com/realtorist/realtorist-api/internal/events"
	"github.com/realtorist/realtorist-api/internal/service"
	"github.com/realtorist/realtorist-api/internal/store"
)

// requestTimeout bounds the work of a single API request. Feed updates are
// queued, so no handler needs longer.
const requestTimeout = 60 * time.Second

// RouterDeps carries everything NewRouter wires into handlers.
type RouterDeps struct {
	Auth          AuthService
	Authenticator apiMiddleware.Authenticator
	Listings      service.ListingService
	Updates       UpdateRequester
	Events        store.EventStore
	EventSink     events.Logger

	DB     Pinger
	Queue  QueueLengther
	Worker WorkerStater

	Logger *slog.Logger
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	recorder := apiMiddleware.NewRecorder(deps.EventSink, logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.Authenticator)

	authHandler := NewAuthHandler(deps.Auth, logger)
	listingHandler := NewListingHandler(deps.Listings, deps.Updates, logger)
	eventHandler := NewEventHandler(deps.Events, logger)
	healthHandler := NewHealthHandler(deps.DB, deps.Queue, deps.Worker, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))
	r.Use(recorder.Middleware)
	r.Use(chimw.Timeout(requestTimeout))

	r.NotFound(recorder.NotFound)

	r.Get("/health", healthHandler.Health)

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/change-password", authHandler.ChangePassword)

			r.Route("/listings", func(r chi.Router) {
				r.Get("/", listingHandler.ListListings)
				r.Put("/", listingHandler.CreateListing)
				r.Post("/update", listingHandler.LaunchUpdate)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", listingHandler.GetListing)
					r.Post("/", listingHandler.UpdateListing)
					r.Delete("/", listingHandler.DeleteListing)
					r.Post("/feature", listingHandler.Feature)
					r.Post("/unfeature", listingHandler.Unfeature)
					r.Post("/disable", listingHandler.Disable)
					r.Post("/enable", listingHandler.Enable)
				})
			})

			r.Get("/events", eventHandler.ListEvents)
			r.Delete("/events", eventHandler.DeleteEvents)
		})
	})

	return r
}
