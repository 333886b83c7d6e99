package testdb

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTestDatabaseURLPrecedence(t *testing.T) {
	t.Setenv(EnvTestDatabaseURL, "")
	t.Setenv(EnvDatabaseURL, "")
	assert.Empty(t, GetTestDatabaseURL())
	assert.True(t, ShouldSkipDatabaseTest())

	t.Setenv(EnvDatabaseURL, "postgres://fallback/db")
	assert.Equal(t, "postgres://fallback/db", GetTestDatabaseURL())

	t.Setenv(EnvTestDatabaseURL, "postgres://test/db")
	assert.Equal(t, "postgres://test/db", GetTestDatabaseURL())
	assert.False(t, ShouldSkipDatabaseTest())
}

func TestGetTestDBWithoutConfiguration(t *testing.T) {
	t.Setenv(EnvTestDatabaseURL, "")
	t.Setenv(EnvDatabaseURL, "")

	_, err := GetTestDB(context.Background())
	assert.ErrorContains(t, err, EnvTestDatabaseURL)
}

func TestWithTxRollsBack(t *testing.T) {
	db := GetTestDBWithT(t)
	ctx := context.Background()

	WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, level, type, title, message, error, created_at)
			 VALUES (gen_random_uuid(), 'info', 'generic', 'testdb-rollback', '', '', NOW())`)
		require.NoError(t, err)
	})

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE title = 'testdb-rollback'`).Scan(&count))
	assert.Zero(t, count)
}
