// Package jobs schedules the recurring back-office jobs: pulling listings
// from every configured feed and pruning the event log. Jobs run directly on
// the scheduler's goroutines, not through the background task queue.
package jobs
