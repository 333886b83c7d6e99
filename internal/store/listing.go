package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/realtorist/realtorist-api/internal/domain"
)

// ListingFilter narrows a listing query. Zero values mean "no filter".
type ListingFilter struct {
	Source   domain.ListingSource
	Featured *bool
	Disabled *bool
	Limit    int
	Offset   int
}

// ListingStore defines the interface for listing persistence.
type ListingStore interface {
	// Create inserts a new listing.
	// Returns ErrListingExists on a (source, external_id) collision.
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID returns ErrListingNotFound if the listing does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)

	// GetByExternalID finds a feed listing by its MLS number.
	GetByExternalID(ctx context.Context, source domain.ListingSource, externalID string) (*domain.Listing, error)

	// Update overwrites an existing listing.
	// Returns ErrListingNotFound if the listing does not exist.
	Update(ctx context.Context, listing *domain.Listing) error

	// Upsert inserts the listing or replaces the one with the same
	// (source, external_id), keeping the stored ID and the featured and disabled flags.
	// Returns true when a new row was inserted.
	Upsert(ctx context.Context, listing *domain.Listing) (bool, error)

	// Delete returns ErrListingNotFound if the listing does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteStale removes listings of source last updated before cutoff.
	DeleteStale(ctx context.Context, source domain.ListingSource, cutoff time.Time) (int64, error)

	// List returns listings newest first along with the total matching count.
	List(ctx context.Context, filter ListingFilter) ([]*domain.Listing, int64, error)
}
