package task

import (
	"context"
	"log/slog"

	"github.com/realtorist/realtorist-api/internal/store"
)

// Task is a unit of deferred work. It receives a context that carries the
// worker's values but is not cancelled by shutdown, and the dependency scope
// opened for this invocation alone.
type Task func(ctx context.Context, scope Scope) error

// Scope is the set of dependencies a task may use. It is valid only until
// the task returns.
type Scope interface {
	Listings() store.ListingStore
	Events() store.EventStore
	Logger() *slog.Logger

	// Close releases the scope's resources.
	Close() error
}

// ScopeFactory opens a fresh Scope for each task.
type ScopeFactory interface {
	NewScope(ctx context.Context) (Scope, error)
}

// ScopeFactoryFunc adapts a function to the ScopeFactory interface.
type ScopeFactoryFunc func(ctx context.Context) (Scope, error)

// NewScope implements ScopeFactory.
func (f ScopeFactoryFunc) NewScope(ctx context.Context) (Scope, error) {
	return f(ctx)
}

// Enqueuer accepts tasks for background execution.
type Enqueuer interface {
	Enqueue(task Task) error
}

// Dequeuer hands queued tasks to the single consumer.
type Dequeuer interface {
	Dequeue(ctx context.Context) (Task, error)
	Len() int
}
