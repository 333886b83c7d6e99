package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/realtorist/realtorist-api/internal/store"
	"github.com/realtorist/realtorist-api/internal/task"
)

// ScopeFactory opens task scopes backed by a dedicated pooled connection.
type ScopeFactory struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewScopeFactory creates a ScopeFactory over the given pool.
func NewScopeFactory(db *sql.DB, logger *slog.Logger) *ScopeFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScopeFactory{db: db, logger: logger}
}

var _ task.ScopeFactory = (*ScopeFactory)(nil)

// NewScope checks out a connection from the pool and binds fresh stores to it.
func (f *ScopeFactory) NewScope(ctx context.Context) (task.Scope, error) {
	conn, err := f.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}

	scopeLogger := f.logger.With("scope_id", uuid.NewString())
	scopeLogger.Debug("task scope opened")

	return &Scope{
		conn:     conn,
		listings: NewPostgresListingStore(conn, scopeLogger),
		events:   NewPostgresEventStore(conn, scopeLogger),
		logger:   scopeLogger,
	}, nil
}

// Scope is a task scope bound to one connection.
type Scope struct {
	conn     *sql.Conn
	listings *PostgresListingStore
	events   *PostgresEventStore
	logger   *slog.Logger
}

var _ task.Scope = (*Scope)(nil)

// Listings implements task.Scope.
func (s *Scope) Listings() store.ListingStore { return s.listings }

// Events implements task.Scope.
func (s *Scope) Events() store.EventStore { return s.events }

// Logger implements task.Scope.
func (s *Scope) Logger() *slog.Logger { return s.logger }

// Close returns the connection to the pool.
func (s *Scope) Close() error {
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to release database connection: %w", err)
	}
	s.logger.Debug("task scope closed")
	return nil
}
