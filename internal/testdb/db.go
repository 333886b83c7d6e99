package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"
	"github.com/realtorist/realtorist-api/internal/platform/postgres/migrations"
	"github.com/realtorist/realtorist-api/internal/redact"
	"github.com/stretchr/testify/require"
)

// Environment variables consulted for the test database URL, in order.
const (
	EnvTestDatabaseURL = "REALTORIST_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// MigrationTableName matches the table used by the migrate command.
const MigrationTableName = "schema_migrations"

// TestTimeout bounds connection checks and schema setup.
const TestTimeout = 10 * time.Second

// GetTestDatabaseURL returns the configured test database URL, or "".
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ShouldSkipDatabaseTest reports whether no test database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// GetTestDB opens a pool on the test database and applies migrations.
func GetTestDB(ctx context.Context) (*sql.DB, error) {
	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		return nil, fmt.Errorf("no test database configured: set %s", EnvTestDatabaseURL)
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open test database %s: %w", redact.String(dbURL), err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, TestTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach test database %s: %w", redact.String(dbURL), err)
	}

	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// GetTestDBWithT returns a migrated test database, closed when the test
// ends. The test is skipped when no database is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skipf("%s not set, skipping database test", EnvTestDatabaseURL)
	}

	db, err := GetTestDB(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { CleanupDB(t, db) })
	return db
}

// ApplyMigrations brings the schema up to date from the embedded migrations.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// CleanupDB closes db, logging rather than failing on error.
func CleanupDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		t.Logf("Warning: failed to close database connection: %v", err)
	}
}
