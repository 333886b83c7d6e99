// Package store defines interfaces for data persistence operations.
// These interfaces keep the queue, jobs and HTTP handlers independent of
// the concrete database. The Postgres implementations live in
// internal/platform/postgres.
package store
