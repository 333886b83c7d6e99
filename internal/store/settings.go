package store

import (
	"context"

	"github.com/realtorist/realtorist-api/internal/domain"
)

// SettingsStore persists JSON settings documents keyed by type.
type SettingsStore interface {
	// Get decodes the document of the given type into dest.
	// Returns ErrSettingNotFound if no document is stored.
	Get(ctx context.Context, settingType domain.SettingType, dest any) error

	// Put stores value as the document of the given type, replacing any existing one.
	Put(ctx context.Context, settingType domain.SettingType, value any) error
}
