package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/store"
)

// maxFeedBytes bounds the size of a feed response.
const maxFeedBytes = 64 << 20

// item is one listing as served by a JSON feed.
type item struct {
	ID          string   `json:"id"`
	Street      string   `json:"street"`
	City        string   `json:"city"`
	Province    string   `json:"province"`
	PostalCode  string   `json:"postal_code"`
	Country     string   `json:"country"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Price       float64  `json:"price"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Description string   `json:"description"`
}

func (it item) toListing(source domain.ListingSource, updated time.Time) *domain.Listing {
	return &domain.Listing{
		ID:         uuid.New(),
		Source:     source,
		ExternalID: it.ID,
		Address: domain.Address{
			Street:     it.Street,
			City:       it.City,
			Province:   it.Province,
			PostalCode: it.PostalCode,
			Country:    it.Country,
			Latitude:   it.Latitude,
			Longitude:  it.Longitude,
		},
		Price:       it.Price,
		Bedrooms:    it.Bedrooms,
		Bathrooms:   it.Bathrooms,
		Description: it.Description,
		LastUpdated: updated,
	}
}

// HTTPFlow pulls a JSON array of listings from a feed URL.
type HTTPFlow struct {
	cfg       Config
	client    *http.Client
	describer Describer
	locks     *sourceLocks
	logger    *slog.Logger
	now       func() time.Time
}

var _ Flow = (*HTTPFlow)(nil)

// Launch fetches the feed, upserts its listings, then removes the source's
// listings the feed did not return. An empty feed removes nothing.
// Launches of the same source from one Factory run one at a time; the stale
// cutoff is taken after the source is acquired.
func (f *HTTPFlow) Launch(ctx context.Context, listings store.ListingStore) (Result, error) {
	source := f.cfg.ListingSource
	result := Result{Source: source}
	log := f.logger.With("listing_source", source)

	release, err := f.locks.acquire(ctx, source)
	if err != nil {
		return result, fmt.Errorf("waiting for running update of %s: %w", source, err)
	}
	defer release()

	// Postgres keeps microseconds; truncating keeps the stale cutoff exact.
	started := f.now().UTC().Truncate(time.Microsecond)

	items, err := f.fetch(ctx)
	if err != nil {
		return result, err
	}
	result.Fetched = len(items)
	log.Info("feed fetched", "count", len(items))

	for _, it := range items {
		listing := it.toListing(source, started)
		if err := listing.Validate(); err != nil {
			log.Warn("skipping invalid feed listing", "external_id", it.ID, "error", err)
			result.Skipped++
			continue
		}

		if listing.Description == "" && f.describer != nil {
			if f.describe(ctx, listings, listing, log) {
				result.Described++
			}
		}

		inserted, err := listings.Upsert(ctx, listing)
		if err != nil {
			return result, fmt.Errorf("failed to store listing %s from %s: %w", it.ID, source, err)
		}
		result.Upserted++
		if inserted {
			result.Inserted++
		}
	}

	if len(items) == 0 {
		log.Warn("feed returned no listings, keeping existing ones")
		return result, nil
	}

	removed, err := listings.DeleteStale(ctx, source, started)
	if err != nil {
		return result, fmt.Errorf("failed to remove stale listings from %s: %w", source, err)
	}
	result.Removed = removed

	log.Info("feed update finished",
		"upserted", result.Upserted,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"removed", result.Removed,
		"described", result.Described)
	return result, nil
}

// describe fills listing.Description, reusing a stored description when the
// listing is already known. It reports whether a new description was written.
func (f *HTTPFlow) describe(
	ctx context.Context,
	listings store.ListingStore,
	listing *domain.Listing,
	log *slog.Logger,
) bool {
	existing, err := listings.GetByExternalID(ctx, listing.Source, listing.ExternalID)
	switch {
	case err == nil && existing.Description != "":
		listing.Description = existing.Description
		return false
	case err != nil && !store.IsNotFoundError(err):
		log.Warn("failed to look up existing listing", "external_id", listing.ExternalID, "error", err)
	}

	description, err := f.describer.Describe(ctx, listing)
	if err != nil {
		log.Warn("failed to generate listing description", "external_id", listing.ExternalID, "error", err)
		return false
	}
	listing.Description = description
	return description != ""
}

func (f *HTTPFlow) fetch(ctx context.Context) ([]item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	req.Header.Set("Accept", "application/json")
	if f.cfg.Username != "" || f.cfg.Password != "" {
		req.SetBasicAuth(f.cfg.Username, f.cfg.Password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFeedUnavailable, f.cfg.ListingSource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s responded with status %d",
			ErrFeedUnavailable, f.cfg.ListingSource, resp.StatusCode)
	}

	var items []item
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode feed %s: %w", f.cfg.ListingSource, err)
	}
	return items, nil
}
