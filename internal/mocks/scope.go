package mocks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/realtorist/realtorist-api/internal/store"
	"github.com/realtorist/realtorist-api/internal/task"
)

// MockScope is a task.Scope over in-memory stores.
type MockScope struct {
	ListingStore *MockListingStore
	EventStore   *MockEventStore
	Log          *slog.Logger

	mu     sync.Mutex
	closed int
}

var _ task.Scope = (*MockScope)(nil)

// Listings implements task.Scope.
func (s *MockScope) Listings() store.ListingStore { return s.ListingStore }

// Events implements task.Scope.
func (s *MockScope) Events() store.EventStore { return s.EventStore }

// Logger implements task.Scope.
func (s *MockScope) Logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// Close implements task.Scope.
func (s *MockScope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// Closed returns how many times Close was called.
func (s *MockScope) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// MockScopeFactory always hands out the same MockScope, or Err.
type MockScopeFactory struct {
	Scope *MockScope
	Err   error

	mu    sync.Mutex
	calls int
}

var _ task.ScopeFactory = (*MockScopeFactory)(nil)

// NewMockScopeFactory creates a factory over fresh in-memory stores.
func NewMockScopeFactory(logger *slog.Logger) *MockScopeFactory {
	return &MockScopeFactory{
		Scope: &MockScope{
			ListingStore: NewMockListingStore(),
			EventStore:   NewMockEventStore(),
			Log:          logger,
		},
	}
}

// NewScope implements task.ScopeFactory.
func (f *MockScopeFactory) NewScope(context.Context) (task.Scope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Scope, nil
}

// Calls returns how many scopes were requested.
func (f *MockScopeFactory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
