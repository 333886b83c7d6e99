package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/store"
)

// PostgresSettingsStore implements store.SettingsStore over a JSONB table.
type PostgresSettingsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSettingsStore creates a settings store bound to db.
func NewPostgresSettingsStore(db store.DBTX, logger *slog.Logger) *PostgresSettingsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSettingsStore{
		db:     db,
		logger: logger.With(slog.String("component", "settings_store")),
	}
}

var _ store.SettingsStore = (*PostgresSettingsStore)(nil)

// Get implements store.SettingsStore.Get.
func (s *PostgresSettingsStore) Get(ctx context.Context, settingType domain.SettingType, dest any) error {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE type = $1`, settingType).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrSettingNotFound
		}
		return MapError(err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s settings: %w", settingType, err)
	}
	return nil
}

// Put implements store.SettingsStore.Put.
func (s *PostgresSettingsStore) Put(ctx context.Context, settingType domain.SettingType, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s settings: %w", settingType, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (type, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (type) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, settingType, raw)
	if err != nil {
		s.logger.Error("failed to store settings",
			slog.String("type", string(settingType)),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}
