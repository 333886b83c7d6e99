package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/events"
	"github.com/realtorist/realtorist-api/internal/platform/logger"
)

// FailureTitle is the title (and message) of the event recorded for a failed task.
const FailureTitle = "An error occurred during execution of a background task"

// ErrTaskPanicked wraps the value recovered from a panicking task.
var ErrTaskPanicked = errors.New("task panicked")

// State is the worker's lifecycle state.
type State int32

// Worker states. Stopped is terminal and is entered only from Idle.
const (
	StateIdle State = iota
	StateExecuting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Worker is the single consumer of a task queue. It runs one task at a
// time; a failing task is logged and reported to the event sink and never
// stops the loop.
type Worker struct {
	queue  Dequeuer
	scopes ScopeFactory
	sink   events.Logger
	logger *slog.Logger

	state atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorker creates a worker consuming queue. sink may be nil, in which case
// failures are only logged.
func NewWorker(queue Dequeuer, scopes ScopeFactory, sink events.Logger, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		queue:  queue,
		scopes: scopes,
		sink:   sink,
		logger: logger.With("component", "task_worker"),
	}
}

// State returns the worker's current state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Start runs the loop in a new goroutine until Stop is called or ctx is done.
// Calling Start on a running worker is a no-op.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		w.Run(ctx)
	}(w.done)
}

// Stop signals shutdown and waits for the loop to exit. A task that is
// executing is allowed to finish first.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done returns a channel closed when a started worker's loop has exited.
// It returns nil if Start has not been called.
func (w *Worker) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Run is the worker loop. It blocks until ctx is done or the queue is
// closed and drained. Tasks still queued at shutdown are dropped.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("background worker started")

	for {
		w.state.Store(int32(StateIdle))

		task, err := w.queue.Dequeue(ctx)
		if err != nil {
			w.state.Store(int32(StateStopped))
			if errors.Is(err, ErrQueueClosed) {
				w.logger.Info("background worker stopped, queue closed")
				return
			}
			if dropped := w.queue.Len(); dropped > 0 {
				w.logger.Warn("background worker stopped with pending tasks",
					"dropped_tasks", dropped)
			} else {
				w.logger.Info("background worker stopped")
			}
			return
		}

		w.state.Store(int32(StateExecuting))
		w.execute(ctx, task)
	}
}

// execute runs a single task in its own scope. The task context keeps the
// loop's values but is detached from its cancellation.
func (w *Worker) execute(ctx context.Context, task Task) {
	taskCtx := context.WithoutCancel(ctx)

	scope, err := w.scopes.NewScope(taskCtx)
	if err != nil {
		w.reportFailure(taskCtx, fmt.Errorf("failed to open task scope: %w", err))
		return
	}
	defer func() {
		if err := scope.Close(); err != nil {
			w.logger.Warn("failed to close task scope", "error", err)
		}
	}()

	if err := invoke(taskCtx, task, scope); err != nil {
		w.reportFailure(taskCtx, err)
		return
	}
	w.logger.Debug("background task completed")
}

func invoke(ctx context.Context, task Task, scope Scope) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, p)
		}
	}()

	if log := scope.Logger(); log != nil {
		ctx = logger.WithLogger(ctx, log)
	}
	return task(ctx, scope)
}

// reportFailure logs err and records it with the event sink. Sink errors and
// panics are swallowed.
func (w *Worker) reportFailure(ctx context.Context, err error) {
	w.logger.Error(FailureTitle, "error", err)

	if w.sink == nil {
		return
	}

	defer func() {
		if p := recover(); p != nil {
			w.logger.Error("event sink panicked", "panic", p)
		}
	}()

	if sinkErr := w.sink.CreateEvent(ctx, domain.EventTypeGeneric, FailureTitle, FailureTitle, err); sinkErr != nil {
		w.logger.Warn("failed to record task failure event", "error", sinkErr)
	}
}
