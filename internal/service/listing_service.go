package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/platform/logger"
	"github.com/realtorist/realtorist-api/internal/store"
)

// ListingRepository is the listing store as seen by the service layer.
type ListingRepository interface {
	store.ListingStore

	// WithTx returns a repository bound to tx.
	WithTx(tx *sql.Tx) ListingRepository

	// DB returns the handle transactions are started on.
	DB() store.TxBeginner
}

// ListingInput carries the editable fields of a hand-entered listing.
type ListingInput struct {
	Address     domain.Address
	Price       float64
	Bedrooms    int
	Bathrooms   int
	Description string
}

// ListingPage is one page of a listing query.
type ListingPage struct {
	Listings []*domain.Listing
	Total    int64
}

// ListingService provides the admin operations on listings.
type ListingService interface {
	GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ListListings(ctx context.Context, filter store.ListingFilter) (*ListingPage, error)

	// CreateListing stores a new hand-entered listing.
	CreateListing(ctx context.Context, input ListingInput) (*domain.Listing, error)

	// UpdateListing replaces the editable fields of a hand-entered listing.
	// Feed listings are refused with domain.ErrReadOnlyListing.
	UpdateListing(ctx context.Context, id uuid.UUID, input ListingInput) (*domain.Listing, error)

	// DeleteListing removes a hand-entered listing.
	// Feed listings are refused with domain.ErrReadOnlyListing.
	DeleteListing(ctx context.Context, id uuid.UUID) error

	// SetFeatured and SetDisabled toggle flags on any listing, including feed
	// listings. They leave LastUpdated untouched.
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error
	SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error
}

type listingServiceImpl struct {
	repo   ListingRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewListingService creates a ListingService.
func NewListingService(repo ListingRepository, logger *slog.Logger) (ListingService, error) {
	if repo == nil {
		return nil, domain.NewValidationError("repo", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &listingServiceImpl{
		repo:   repo,
		now:    time.Now,
		logger: logger.With(slog.String("component", "listing_service")),
	}, nil
}

// GetListing implements ListingService.
func (s *listingServiceImpl) GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("listing", "get", err)
	}
	return listing, nil
}

// ListListings implements ListingService.
func (s *listingServiceImpl) ListListings(ctx context.Context, filter store.ListingFilter) (*ListingPage, error) {
	listings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("listing", "list", err)
	}
	return &ListingPage{Listings: listings, Total: total}, nil
}

// CreateListing implements ListingService.
func (s *listingServiceImpl) CreateListing(ctx context.Context, input ListingInput) (*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	listing, err := domain.NewUserListing(
		input.Address, input.Price, input.Bedrooms, input.Bathrooms, input.Description)
	if err != nil {
		return nil, err
	}
	listing.LastUpdated = s.now().UTC()

	if err := s.repo.Create(ctx, listing); err != nil {
		log.Error("failed to create listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return nil, NewServiceError("listing", "create", err)
	}

	log.Info("listing created", slog.String("listing_id", listing.ID.String()))
	return listing, nil
}

// UpdateListing implements ListingService.
func (s *listingServiceImpl) UpdateListing(
	ctx context.Context,
	id uuid.UUID,
	input ListingInput,
) (*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Listing
	err := s.inTx(ctx, func(ctx context.Context, repo ListingRepository) error {
		listing, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := listing.CheckEditable(); err != nil {
			log.Warn("refused to update feed listing",
				slog.String("listing_id", id.String()),
				slog.String("source", string(listing.Source)))
			return err
		}

		listing.Address = input.Address
		listing.Price = input.Price
		listing.Bedrooms = input.Bedrooms
		listing.Bathrooms = input.Bathrooms
		listing.Description = input.Description
		listing.LastUpdated = s.now().UTC()
		if err := listing.Validate(); err != nil {
			return err
		}

		if err := repo.Update(ctx, listing); err != nil {
			return err
		}
		updated = listing
		return nil
	})
	if err != nil {
		return nil, NewServiceError("listing", "update", err)
	}

	log.Info("listing updated", slog.String("listing_id", id.String()))
	return updated, nil
}

// DeleteListing implements ListingService.
func (s *listingServiceImpl) DeleteListing(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(ctx context.Context, repo ListingRepository) error {
		listing, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := listing.CheckEditable(); err != nil {
			log.Warn("refused to delete feed listing",
				slog.String("listing_id", id.String()),
				slog.String("source", string(listing.Source)))
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return NewServiceError("listing", "delete", err)
	}

	log.Info("listing deleted", slog.String("listing_id", id.String()))
	return nil
}

// SetFeatured implements ListingService.
func (s *listingServiceImpl) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	return s.setFlag(ctx, "set_featured", id, func(l *domain.Listing) { l.Featured = featured })
}

// SetDisabled implements ListingService.
func (s *listingServiceImpl) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	return s.setFlag(ctx, "set_disabled", id, func(l *domain.Listing) { l.Disabled = disabled })
}

func (s *listingServiceImpl) setFlag(
	ctx context.Context,
	op string,
	id uuid.UUID,
	apply func(*domain.Listing),
) error {
	err := s.inTx(ctx, func(ctx context.Context, repo ListingRepository) error {
		listing, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		apply(listing)
		return repo.Update(ctx, listing)
	})
	if err != nil {
		return NewServiceError("listing", op, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("listing flag changed",
		slog.String("listing_id", id.String()),
		slog.String("operation", op))
	return nil
}

func (s *listingServiceImpl) inTx(
	ctx context.Context,
	fn func(ctx context.Context, repo ListingRepository) error,
) error {
	return store.RunInTransaction(ctx, s.repo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.repo.WithTx(tx))
	})
}
