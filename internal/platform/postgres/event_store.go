package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/store"
)

// PostgresEventStore implements store.EventStore.
type PostgresEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEventStore creates an event store bound to db.
func NewPostgresEventStore(db store.DBTX, logger *slog.Logger) *PostgresEventStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "event_store")),
	}
}

var _ store.EventStore = (*PostgresEventStore)(nil)

// Create implements store.EventStore.Create.
func (s *PostgresEventStore) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, level, type, title, message, error, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.Level, event.Type, event.Title, event.Message, event.Error, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", MapError(err))
	}
	return nil
}

// List implements store.EventStore.List.
func (s *PostgresEventStore) List(ctx context.Context, limit, offset int) ([]*domain.Event, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, level, type, title, message, error, created_at
		FROM events
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]*domain.Event, 0, limit)
	for rows.Next() {
		var (
			e       domain.Event
			errText sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Level, &e.Type, &e.Title, &e.Message, &errText, &e.CreatedAt); err != nil {
			return nil, 0, MapError(err)
		}
		e.Error = errText.String
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return events, total, nil
}

// DeleteAll implements store.EventStore.DeleteAll.
func (s *PostgresEventStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events`)
	if err != nil {
		return 0, MapError(err)
	}
	return result.RowsAffected()
}

// DeleteOlderThan implements store.EventStore.DeleteOlderThan.
func (s *PostgresEventStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	s.logger.Debug("deleted old events", slog.Int64("count", n), slog.Time("cutoff", cutoff))
	return n, nil
}
