package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/store"
)

// MockListingStore is an in-memory store.ListingStore. Setting Err makes
// every method fail with it.
type MockListingStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*domain.Listing
	Err      error

	// UpsertErr fails Upsert only.
	UpsertErr error
}

// NewMockListingStore creates an empty store seeded with listings.
func NewMockListingStore(listings ...*domain.Listing) *MockListingStore {
	m := &MockListingStore{listings: make(map[uuid.UUID]*domain.Listing)}
	for _, l := range listings {
		c := *l
		m.listings[l.ID] = &c
	}
	return m
}

var _ store.ListingStore = (*MockListingStore)(nil)

// Create implements store.ListingStore.
func (m *MockListingStore) Create(_ context.Context, listing *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if err := listing.Validate(); err != nil {
		return err
	}
	if _, ok := m.listings[listing.ID]; ok {
		return store.ErrListingExists
	}
	if listing.ExternalID != "" && m.findExternal(listing.Source, listing.ExternalID) != nil {
		return store.ErrListingExists
	}
	c := *listing
	m.listings[listing.ID] = &c
	return nil
}

// GetByID implements store.ListingStore.
func (m *MockListingStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	l, ok := m.listings[id]
	if !ok {
		return nil, store.ErrListingNotFound
	}
	c := *l
	return &c, nil
}

// GetByExternalID implements store.ListingStore.
func (m *MockListingStore) GetByExternalID(
	_ context.Context,
	source domain.ListingSource,
	externalID string,
) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	l := m.findExternal(source, externalID)
	if l == nil {
		return nil, store.ErrListingNotFound
	}
	c := *l
	return &c, nil
}

// Update implements store.ListingStore.
func (m *MockListingStore) Update(_ context.Context, listing *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.listings[listing.ID]; !ok {
		return store.ErrListingNotFound
	}
	c := *listing
	m.listings[listing.ID] = &c
	return nil
}

// Upsert implements store.ListingStore.
func (m *MockListingStore) Upsert(_ context.Context, listing *domain.Listing) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	if m.UpsertErr != nil {
		return false, m.UpsertErr
	}
	if existing := m.findExternal(listing.Source, listing.ExternalID); existing != nil {
		listing.ID = existing.ID
		listing.Featured = existing.Featured
		listing.Disabled = existing.Disabled
		c := *listing
		m.listings[listing.ID] = &c
		return false, nil
	}
	c := *listing
	m.listings[listing.ID] = &c
	return true, nil
}

// Delete implements store.ListingStore.
func (m *MockListingStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.listings[id]; !ok {
		return store.ErrListingNotFound
	}
	delete(m.listings, id)
	return nil
}

// DeleteStale implements store.ListingStore.
func (m *MockListingStore) DeleteStale(
	_ context.Context,
	source domain.ListingSource,
	cutoff time.Time,
) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}
	var removed int64
	for id, l := range m.listings {
		if l.Source == source && l.LastUpdated.Before(cutoff) {
			delete(m.listings, id)
			removed++
		}
	}
	return removed, nil
}

// List implements store.ListingStore.
func (m *MockListingStore) List(_ context.Context, filter store.ListingFilter) ([]*domain.Listing, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, 0, m.Err
	}

	matched := make([]*domain.Listing, 0, len(m.listings))
	for _, l := range m.listings {
		if filter.Source != "" && l.Source != filter.Source {
			continue
		}
		if filter.Featured != nil && l.Featured != *filter.Featured {
			continue
		}
		if filter.Disabled != nil && l.Disabled != *filter.Disabled {
			continue
		}
		c := *l
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].LastUpdated.Equal(matched[j].LastUpdated) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].LastUpdated.After(matched[j].LastUpdated)
	})

	total := int64(len(matched))
	return page(matched, filter.Limit, filter.Offset), total, nil
}

// All returns every stored listing, in no particular order.
func (m *MockListingStore) All() []*domain.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Listing, 0, len(m.listings))
	for _, l := range m.listings {
		c := *l
		out = append(out, &c)
	}
	return out
}

func (m *MockListingStore) findExternal(source domain.ListingSource, externalID string) *domain.Listing {
	if externalID == "" {
		return nil
	}
	for _, l := range m.listings {
		if l.Source == source && l.ExternalID == externalID {
			return l
		}
	}
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
