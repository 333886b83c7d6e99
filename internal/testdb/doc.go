// Package testdb provides utilities for tests that run against a real
// PostgreSQL database.
//
// Each test runs in its own transaction, which WithTx rolls back when the
// test completes, so tests can share tables without cleanup:
//
//	func TestListingStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t) // skips when no database is configured
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        s := postgres.NewPostgresListingStore(tx, nil)
//	        ...
//	    })
//	}
//
// The database URL is read from REALTORIST_TEST_DATABASE_URL, falling back
// to DATABASE_URL. Migrations are applied from the embedded migration files.
package testdb
