package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/realtorist/realtorist-api/internal/api/shared"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/feed"
	"github.com/realtorist/realtorist-api/internal/platform/logger"
	"github.com/realtorist/realtorist-api/internal/service"
	"github.com/realtorist/realtorist-api/internal/store"
)

// UpdateRequester queues on-demand feed updates.
type UpdateRequester interface {
	RequestUpdate(ctx context.Context, req feed.Config) error
}

// ListingHandler handles listing administration requests.
type ListingHandler struct {
	listings  service.ListingService
	updates   UpdateRequester
	validator *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(
	listings service.ListingService,
	updates UpdateRequester,
	logger *slog.Logger,
) *ListingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingHandler{
		listings:  listings,
		updates:   updates,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "listing_handler")),
		now:       time.Now,
	}
}

// ListListings handles GET /api/admin/listings. Results are newest first.
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	p, err := getPagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	featured, err := getOptionalBool(r, "featured")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	disabled, err := getOptionalBool(r, "disabled")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.listings.ListListings(r.Context(), store.ListingFilter{
		Source:   domain.ListingSource(r.URL.Query().Get("source")),
		Featured: featured,
		Disabled: disabled,
		Limit:    p.Limit,
		Offset:   p.offset(),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list listings")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PageResponse[*domain.Listing]{
		Results:    page.Listings,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: page.Total,
	})
}

// GetListing handles GET /api/admin/listings/{id}.
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	listing, err := h.listings.GetListing(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get listing")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listing)
}

// CreateListing handles PUT /api/admin/listings.
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeListing(w, r)
	if !ok {
		return
	}

	listing, err := h.listings.CreateListing(r.Context(), req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create listing")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, CreateListingResponse{ID: listing.ID.String()})
}

// UpdateListing handles POST /api/admin/listings/{id}.
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	req, ok := h.decodeListing(w, r)
	if !ok {
		return
	}

	if _, err := h.listings.UpdateListing(r.Context(), id, req.toInput()); err != nil {
		HandleAPIError(w, r, err, "Failed to update listing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteListing handles DELETE /api/admin/listings/{id}.
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, "Failed to delete listing", h.listings.DeleteListing)
}

// Feature handles POST /api/admin/listings/{id}/feature.
func (h *ListingHandler) Feature(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.listings.SetFeatured, true)
}

// Unfeature handles POST /api/admin/listings/{id}/unfeature.
func (h *ListingHandler) Unfeature(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.listings.SetFeatured, false)
}

// Disable handles POST /api/admin/listings/{id}/disable.
func (h *ListingHandler) Disable(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.listings.SetDisabled, true)
}

// Enable handles POST /api/admin/listings/{id}/enable.
func (h *ListingHandler) Enable(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.listings.SetDisabled, false)
}

// LaunchUpdate handles POST /api/admin/listings/update. The update runs on
// the background worker; the response only confirms it was queued.
func (h *ListingHandler) LaunchUpdate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req UpdateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	err := h.updates.RequestUpdate(r.Context(), feed.Config{
		ListingSource: domain.ListingSource(req.ListingSource),
		URL:           req.URL,
		Username:      req.Username,
		Password:      req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to queue listing update")
		return
	}

	log.Info("queued listing update", slog.String("source", req.ListingSource))
	shared.RespondWithJSON(w, r, http.StatusAccepted, UpdateAcceptedResponse{
		ListingSource: req.ListingSource,
		QueuedAt:      h.now().UTC(),
	})
}

func (h *ListingHandler) decodeListing(w http.ResponseWriter, r *http.Request) (ListingRequest, bool) {
	var req ListingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return req, false
	}
	return req, true
}

func (h *ListingHandler) setFlag(
	w http.ResponseWriter,
	r *http.Request,
	set func(ctx context.Context, id uuid.UUID, value bool) error,
	value bool,
) {
	h.withID(w, r, "Failed to update listing", func(ctx context.Context, id uuid.UUID) error {
		return set(ctx, id, value)
	})
}

func (h *ListingHandler) withID(
	w http.ResponseWriter,
	r *http.Request,
	fallback string,
	op func(ctx context.Context, id uuid.UUID) error,
) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := op(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, fallback)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
