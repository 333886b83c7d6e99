package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/store"
)

// MockEventStore is an in-memory store.EventStore.
type MockEventStore struct {
	mu     sync.Mutex
	events []*domain.Event
	Err    error
}

// NewMockEventStore creates a store seeded with events.
func NewMockEventStore(events ...*domain.Event) *MockEventStore {
	return &MockEventStore{events: append([]*domain.Event(nil), events...)}
}

var _ store.EventStore = (*MockEventStore)(nil)

// Create implements store.EventStore.
func (m *MockEventStore) Create(_ context.Context, event *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	c := *event
	m.events = append(m.events, &c)
	return nil
}

// List implements store.EventStore.
func (m *MockEventStore) List(_ context.Context, limit, offset int) ([]*domain.Event, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, 0, m.Err
	}
	sorted := append([]*domain.Event(nil), m.events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return page(sorted, limit, offset), int64(len(sorted)), nil
}

// DeleteAll implements store.EventStore.
func (m *MockEventStore) DeleteAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}
	n := int64(len(m.events))
	m.events = nil
	return n, nil
}

// DeleteOlderThan implements store.EventStore.
func (m *MockEventStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}
	kept := m.events[:0]
	var removed int64
	for _, e := range m.events {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return removed, nil
}

// Events returns a snapshot of the stored events in insertion order.
func (m *MockEventStore) Events() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Event(nil), m.events...)
}
