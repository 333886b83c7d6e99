package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/platform/logger"
	"github.com/realtorist/realtorist-api/internal/store"
)

const listingColumns = `id, source, external_id, street, city, province, postal_code, country,
	latitude, longitude, price, bedrooms, bathrooms, description, featured, disabled, last_updated`

// PostgresListingStore implements store.ListingStore.
type PostgresListingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresListingStore creates a listing store bound to db, which may be
// the pool, a dedicated connection, or a transaction.
func NewPostgresListingStore(db store.DBTX, logger *slog.Logger) *PostgresListingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresListingStore{
		db:     db,
		logger: logger.With(slog.String("component", "listing_store")),
	}
}

var _ store.ListingStore = (*PostgresListingStore)(nil)

// Create implements store.ListingStore.Create.
func (s *PostgresListingStore) Create(ctx context.Context, listing *domain.Listing) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := listing.Validate(); err != nil {
		log.Warn("listing validation failed during create",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.db.ExecContext(ctx, query, listingArgs(listing)...)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate listing",
				slog.String("source", string(listing.Source)),
				slog.String("external_id", listing.ExternalID))
			return fmt.Errorf("%w: %v", store.ErrListingExists, err)
		}
		log.Error("failed to create listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return MapError(err)
	}

	log.Debug("listing created", slog.String("listing_id", listing.ID.String()))
	return nil
}

// GetByID implements store.ListingStore.GetByID.
func (s *PostgresListingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	listing, err := scanListing(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, s.mapLookupError(ctx, err, slog.String("listing_id", id.String()))
	}
	return listing, nil
}

// GetByExternalID implements store.ListingStore.GetByExternalID.
func (s *PostgresListingStore) GetByExternalID(
	ctx context.Context,
	source domain.ListingSource,
	externalID string,
) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE source = $1 AND external_id = $2`
	listing, err := scanListing(s.db.QueryRowContext(ctx, query, source, externalID))
	if err != nil {
		return nil, s.mapLookupError(ctx, err,
			slog.String("source", string(source)),
			slog.String("external_id", externalID))
	}
	return listing, nil
}

func (s *PostgresListingStore) mapLookupError(ctx context.Context, err error, attrs ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrListingNotFound
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Error("failed to load listing", append(attrs, slog.String("error", err.Error()))...)
	return MapError(err)
}

// Update implements store.ListingStore.Update.
func (s *PostgresListingStore) Update(ctx context.Context, listing *domain.Listing) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := listing.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE listings SET
			source = $2, external_id = NULLIF($3, ''), street = $4, city = $5, province = $6,
			postal_code = $7, country = $8, latitude = $9, longitude = $10, price = $11,
			bedrooms = $12, bathrooms = $13, description = $14, featured = $15, disabled = $16,
			last_updated = $17
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, listingArgs(listing)...)
	if err != nil {
		log.Error("failed to update listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", listing.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrListingNotFound)
}

// Upsert implements store.ListingStore.Upsert.
func (s *PostgresListingStore) Upsert(ctx context.Context, listing *domain.Listing) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := listing.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	// xmax is zero only for freshly inserted rows.
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (source, external_id) DO UPDATE SET
			street = EXCLUDED.street, city = EXCLUDED.city, province = EXCLUDED.province,
			postal_code = EXCLUDED.postal_code, country = EXCLUDED.country,
			latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, price = EXCLUDED.price,
			bedrooms = EXCLUDED.bedrooms, bathrooms = EXCLUDED.bathrooms,
			description = EXCLUDED.description, last_updated = EXCLUDED.last_updated
		RETURNING id, featured, disabled, (xmax = 0)
	`
	var inserted bool
	err := s.db.QueryRowContext(ctx, query, listingArgs(listing)...).
		Scan(&listing.ID, &listing.Featured, &listing.Disabled, &inserted)
	if err != nil {
		log.Error("failed to upsert listing",
			slog.String("error", err.Error()),
			slog.String("source", string(listing.Source)),
			slog.String("external_id", listing.ExternalID))
		return false, MapError(err)
	}
	return inserted, nil
}

// Delete implements store.ListingStore.Delete.
func (s *PostgresListingStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete listing",
			slog.String("error", err.Error()),
			slog.String("listing_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrListingNotFound)
}

// DeleteStale implements store.ListingStore.DeleteStale.
func (s *PostgresListingStore) DeleteStale(
	ctx context.Context,
	source domain.ListingSource,
	cutoff time.Time,
) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM listings WHERE source = $1 AND last_updated < $2`, source, cutoff)
	if err != nil {
		return 0, MapError(err)
	}
	return result.RowsAffected()
}

// List implements store.ListingStore.List.
func (s *PostgresListingStore) List(
	ctx context.Context,
	filter store.ListingFilter,
) ([]*domain.Listing, int64, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Source != "" {
		args = append(args, filter.Source)
		conditions = append(conditions, fmt.Sprintf("source = $%d", len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		conditions = append(conditions, fmt.Sprintf("featured = $%d", len(args)))
	}
	if filter.Disabled != nil {
		args = append(args, *filter.Disabled)
		conditions = append(conditions, fmt.Sprintf("disabled = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`+where, args...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	query := `SELECT ` + listingColumns + ` FROM listings` + where +
		` ORDER BY last_updated DESC, id` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	listings := make([]*domain.Listing, 0, filter.Limit)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, 0, MapError(err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return listings, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var (
		l          domain.Listing
		externalID sql.NullString
		lat, lng   sql.NullFloat64
	)
	err := row.Scan(
		&l.ID, &l.Source, &externalID,
		&l.Address.Street, &l.Address.City, &l.Address.Province, &l.Address.PostalCode, &l.Address.Country,
		&lat, &lng,
		&l.Price, &l.Bedrooms, &l.Bathrooms, &l.Description, &l.Featured, &l.Disabled, &l.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	l.ExternalID = externalID.String
	if lat.Valid && lng.Valid {
		l.Address.Latitude = &lat.Float64
		l.Address.Longitude = &lng.Float64
	}
	return &l, nil
}

func listingArgs(l *domain.Listing) []any {
	return []any{
		l.ID, l.Source, l.ExternalID,
		l.Address.Street, l.Address.City, l.Address.Province, l.Address.PostalCode, l.Address.Country,
		l.Address.Latitude, l.Address.Longitude,
		l.Price, l.Bedrooms, l.Bathrooms, l.Description, l.Featured, l.Disabled, l.LastUpdated,
	}
}
