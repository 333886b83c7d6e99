package feed

import (
	"context"
	"errors"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/store"
)

// Errors returned by flows and the factory.
var (
	ErrReservedSource  = errors.New("listing source is reserved for hand-entered listings")
	ErrInvalidConfig   = errors.New("invalid feed configuration")
	ErrFeedUnavailable = errors.New("feed unavailable")
)

// Config describes one feed.
type Config struct {
	ListingSource domain.ListingSource `json:"listing_source" validate:"required"`
	URL           string               `json:"url"            validate:"required,url"`
	Username      string               `json:"username"`
	Password      string               `json:"password"`
}

// Result summarises one run of a flow.
type Result struct {
	Source    domain.ListingSource `json:"source,omitempty"`
	Fetched   int                  `json:"fetched"`
	Upserted  int                  `json:"upserted"`
	Inserted  int                  `json:"inserted"`
	Skipped   int                  `json:"skipped"`
	Removed   int64                `json:"removed"`
	Described int                  `json:"described"`
}

// Add accumulates other into r.
func (r *Result) Add(other Result) {
	r.Fetched += other.Fetched
	r.Upserted += other.Upserted
	r.Inserted += other.Inserted
	r.Skipped += other.Skipped
	r.Removed += other.Removed
	r.Described += other.Described
}

// Flow updates the listings of one or more sources.
type Flow interface {
	Launch(ctx context.Context, listings store.ListingStore) (Result, error)
}

// Describer writes a description for a listing that has none.
type Describer interface {
	Describe(ctx context.Context, listing *domain.Listing) (string, error)
}
