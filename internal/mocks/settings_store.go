package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/store"
)

// MockSettingsStore keeps settings documents as JSON, like the real store.
type MockSettingsStore struct {
	mu   sync.Mutex
	docs map[domain.SettingType][]byte
	Err  error
}

// NewMockSettingsStore creates an empty settings store.
func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{docs: make(map[domain.SettingType][]byte)}
}

var _ store.SettingsStore = (*MockSettingsStore)(nil)

// Get implements store.SettingsStore.
func (m *MockSettingsStore) Get(_ context.Context, settingType domain.SettingType, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	raw, ok := m.docs[settingType]
	if !ok {
		return store.ErrSettingNotFound
	}
	return json.Unmarshal(raw, dest)
}

// Put implements store.SettingsStore.
func (m *MockSettingsStore) Put(_ context.Context, settingType domain.SettingType, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.docs[settingType] = raw
	return nil
}
