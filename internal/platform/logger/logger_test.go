package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtorist/realtorist-api/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", "debug", slog.LevelDebug, true},
		{"upper case", "WARN", slog.LevelWarn, true},
		{"error", "error", slog.LevelError, true},
		{"unknown falls back to info", "verbose", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			level, ok := ParseLevel(tc.input)
			assert.Equal(t, tc.want, level)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	l, err := Setup(config.ServerConfig{LogLevel: "warn"})

	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default())
	assert.False(t, l.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, l.Enabled(context.Background(), slog.LevelWarn))
}

func TestNewWritesJSON(t *testing.T) {
	l, buf := NewTestLogger()

	l.Info("listing updated", "listing_id", "abc")

	entries := buf.EntriesWithMessage("listing updated")
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0]["listing_id"])
	assert.Equal(t, "INFO", entries[0]["level"])
}

func TestContextLogger(t *testing.T) {
	l, _ := NewTestLogger()

	assert.Same(t, slog.Default(), FromContext(context.Background()))

	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))

	fallback, _ := NewTestLogger()
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, l, FromContextOrDefault(ctx, fallback))
}
