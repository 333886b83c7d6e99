package api

import (
	"log/slog"
	"net/http"

	"github.com/realtorist/realtorist-api/internal/api/shared"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/platform/logger"
	"github.com/realtorist/realtorist-api/internal/store"
)

// EventHandler serves the admin event log.
type EventHandler struct {
	events store.EventStore
	logger *slog.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events store.EventStore, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{
		events: events,
		logger: logger.With(slog.String("component", "event_handler")),
	}
}

// ListEvents handles GET /api/admin/events, newest first.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	p, err := getPagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	events, total, err := h.events.List(r.Context(), p.Limit, p.offset())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list events")
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PageResponse[*domain.Event]{
		Results:    events,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: total,
	})
}

// DeleteEvents handles DELETE /api/admin/events.
func (h *EventHandler) DeleteEvents(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.events.DeleteAll(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete events")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("cleared event log", slog.Int64("deleted", deleted))
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteEventsResponse{Deleted: deleted})
}
