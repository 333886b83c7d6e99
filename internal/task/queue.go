package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// DefaultQueueCapacity is used when a non-positive capacity is requested.
const DefaultQueueCapacity = 256

// Common errors returned by the BackgroundQueue
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
	ErrNilTask     = errors.New("task cannot be nil")
)

// BackgroundQueue is a bounded FIFO of tasks. Any number of goroutines may
// enqueue concurrently; exactly one consumer should dequeue.
type BackgroundQueue struct {
	tasks  chan Task
	mu     sync.RWMutex
	closed bool
	logger *slog.Logger
}

// NewBackgroundQueue creates a queue holding at most capacity pending tasks.
func NewBackgroundQueue(capacity int, logger *slog.Logger) *BackgroundQueue {
	if logger == nil {
		logger = slog.Default()
	}
	if capacity <= 0 {
		logger.Warn("invalid queue capacity specified, using default",
			"specified_capacity", capacity,
			"default_capacity", DefaultQueueCapacity)
		capacity = DefaultQueueCapacity
	}

	return &BackgroundQueue{
		tasks:  make(chan Task, capacity),
		logger: logger.With("component", "background_queue"),
	}
}

var (
	_ Enqueuer = (*BackgroundQueue)(nil)
	_ Dequeuer = (*BackgroundQueue)(nil)
)

// Enqueue appends task to the tail of the queue without blocking.
// It fails with ErrQueueFull when capacity tasks are already pending and
// with ErrQueueClosed once the queue has been closed.
func (q *BackgroundQueue) Enqueue(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			"queue_len", len(q.tasks),
			"queue_cap", cap(q.tasks))
		return nil
	default:
		q.logger.Warn("task rejected, queue is full", "queue_cap", cap(q.tasks))
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Dequeue removes and returns the task at the head of the queue, waiting
// until one is available or ctx is done. A done ctx leaves the queue
// untouched and returns ctx.Err(), immediately if ctx was already done on
// entry. Once the queue is closed and drained it returns ErrQueueClosed.
func (q *BackgroundQueue) Dequeue(ctx context.Context) (Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case task, ok := <-q.tasks:
		if !ok {
			return nil, ErrQueueClosed
		}
		return task, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of pending tasks.
func (q *BackgroundQueue) Len() int {
	return len(q.tasks)
}

// Cap returns the queue's capacity.
func (q *BackgroundQueue) Cap() int {
	return cap(q.tasks)
}

// Close stops the queue from accepting tasks. Pending tasks can still be
// dequeued. Calling Close more than once is a no-op.
func (q *BackgroundQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.tasks)
	q.logger.Info("task queue closed", "pending", len(q.tasks))
}
