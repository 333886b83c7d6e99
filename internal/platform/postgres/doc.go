// Package postgres provides PostgreSQL implementations of the store
// interfaces, plus the per-task dependency scope used by the background
// worker and the cron jobs. Queries go through database/sql with the pgx
// driver; driver errors are translated into store errors by MapError.
package postgres
