package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/events"
	"github.com/realtorist/realtorist-api/internal/platform/logger"
	"github.com/realtorist/realtorist-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScope struct {
	logger *slog.Logger
	closed atomic.Bool
}

func (s *fakeScope) Listings() store.ListingStore { return nil }
func (s *fakeScope) Events() store.EventStore     { return nil }
func (s *fakeScope) Logger() *slog.Logger         { return s.logger }

func (s *fakeScope) Close() error {
	s.closed.Store(true)
	return nil
}

// fakeScopeFactory hands out fakeScopes and remembers them. The first
// failFirst calls return an error instead.
type fakeScopeFactory struct {
	mu        sync.Mutex
	scopes    []*fakeScope
	failFirst int
	calls     int
	logger    *slog.Logger
}

func (f *fakeScopeFactory) NewScope(ctx context.Context) (Scope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.calls <= f.failFirst {
		return nil, errors.New("no database connection available")
	}
	scope := &fakeScope{logger: f.logger}
	f.scopes = append(f.scopes, scope)
	return scope, nil
}

func (f *fakeScopeFactory) opened() []*fakeScope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeScope(nil), f.scopes...)
}

type panickingSink struct{}

func (panickingSink) CreateEvent(context.Context, domain.EventType, string, string, error) error {
	panic("sink exploded")
}

func (panickingSink) CreateEventWithLevel(
	context.Context, domain.EventLevel, domain.EventType, string, string, error,
) error {
	panic("sink exploded")
}

type workerFixture struct {
	queue   *BackgroundQueue
	scopes  *fakeScopeFactory
	sink    *events.InMemoryLogger
	worker  *Worker
	logBuf  *logger.TestLogBuffer
	records chan string
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()

	log, buf := logger.NewTestLogger()
	f := &workerFixture{
		queue:   NewBackgroundQueue(16, log),
		scopes:  &fakeScopeFactory{logger: log.With("scope", "test")},
		sink:    events.NewInMemoryLogger(),
		logBuf:  buf,
		records: make(chan string, 16),
	}
	f.worker = NewWorker(f.queue, f.scopes, f.sink, log)
	return f
}

func (f *workerFixture) recordTask(label string) Task {
	return func(ctx context.Context, scope Scope) error {
		f.records <- label
		return nil
	}
}

func (f *workerFixture) expect(t *testing.T, labels ...string) {
	t.Helper()
	for _, want := range labels {
		select {
		case got := <-f.records:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for task %q", want)
		}
	}
}

func TestWorker_ExecutesTasksInOrder(t *testing.T) {
	f := newWorkerFixture(t)
	for _, label := range []string{"A", "B", "C"} {
		require.NoError(t, f.queue.Enqueue(f.recordTask(label)))
	}

	f.worker.Start(context.Background())
	defer f.worker.Stop()

	f.expect(t, "A", "B", "C")
	assert.Empty(t, f.sink.Events())
}

func TestWorker_FailingTaskDoesNotStopLoop(t *testing.T) {
	f := newWorkerFixture(t)
	taskErr := errors.New("feed returned 500")

	require.NoError(t, f.queue.Enqueue(func(ctx context.Context, scope Scope) error {
		f.records <- "A"
		return taskErr
	}))
	require.NoError(t, f.queue.Enqueue(f.recordTask("B")))

	f.worker.Start(context.Background())
	defer f.worker.Stop()

	f.expect(t, "A", "B")

	require.Eventually(t, func() bool { return len(f.sink.Events()) == 1 }, time.Second, 5*time.Millisecond)
	event := f.sink.Events()[0]
	assert.Equal(t, domain.EventTypeGeneric, event.Type)
	assert.Equal(t, domain.EventLevelError, event.Level)
	assert.Equal(t, FailureTitle, event.Title)
	assert.Equal(t, FailureTitle, event.Message)
	assert.Contains(t, event.Error, "feed returned 500")

	assert.NotEmpty(t, f.logBuf.EntriesWithMessage(FailureTitle))
}

func TestWorker_RecoversFromPanickingTask(t *testing.T) {
	f := newWorkerFixture(t)

	require.NoError(t, f.queue.Enqueue(func(ctx context.Context, scope Scope) error {
		panic("nil map write")
	}))
	require.NoError(t, f.queue.Enqueue(f.recordTask("after panic")))

	f.worker.Start(context.Background())
	defer f.worker.Stop()

	f.expect(t, "after panic")

	events := f.sink.Events()
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Error, "task panicked")
	assert.Contains(t, events[0].Error, "nil map write")
}

func TestWorker_ScopeLifecycle(t *testing.T) {
	f := newWorkerFixture(t)

	capture := func(fail bool) Task {
		return func(ctx context.Context, scope Scope) error {
			assert.Same(t, scope.Logger(), logger.FromContext(ctx), "scope logger travels in the context")
			f.records <- "ran"
			if fail {
				return errors.New("boom")
			}
			return nil
		}
	}
	require.NoError(t, f.queue.Enqueue(capture(false)))
	require.NoError(t, f.queue.Enqueue(capture(true)))

	f.worker.Start(context.Background())
	f.expect(t, "ran", "ran")
	f.worker.Stop()

	opened := f.scopes.opened()
	require.Len(t, opened, 2)
	assert.NotSame(t, opened[0], opened[1], "each task gets a fresh scope")
	for i, scope := range opened {
		assert.True(t, scope.closed.Load(), "scope %d must be closed", i)
	}
}

func TestWorker_ScopeOpenFailure(t *testing.T) {
	f := newWorkerFixture(t)
	f.scopes.failFirst = 1

	require.NoError(t, f.queue.Enqueue(f.recordTask("skipped")))
	require.NoError(t, f.queue.Enqueue(f.recordTask("second")))

	f.worker.Start(context.Background())
	defer f.worker.Stop()

	f.expect(t, "second")

	events := f.sink.Events()
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Error, "failed to open task scope")
}

func TestWorker_SinkFailuresAreSwallowed(t *testing.T) {
	t.Run("sink returns error", func(t *testing.T) {
		f := newWorkerFixture(t)
		f.sink.FailWith(errors.New("event table missing"))

		require.NoError(t, f.queue.Enqueue(func(ctx context.Context, scope Scope) error {
			return errors.New("task failed")
		}))
		require.NoError(t, f.queue.Enqueue(f.recordTask("next")))

		f.worker.Start(context.Background())
		defer f.worker.Stop()

		f.expect(t, "next")
		assert.NotEmpty(t, f.logBuf.EntriesWithMessage("failed to record task failure event"))
	})

	t.Run("sink panics", func(t *testing.T) {
		f := newWorkerFixture(t)
		log, _ := logger.NewTestLogger()
		f.worker = NewWorker(f.queue, f.scopes, panickingSink{}, log)

		require.NoError(t, f.queue.Enqueue(func(ctx context.Context, scope Scope) error {
			return errors.New("task failed")
		}))
		require.NoError(t, f.queue.Enqueue(f.recordTask("next")))

		f.worker.Start(context.Background())
		defer f.worker.Stop()

		f.expect(t, "next")
	})

	t.Run("no sink", func(t *testing.T) {
		f := newWorkerFixture(t)
		log, _ := logger.NewTestLogger()
		f.worker = NewWorker(f.queue, f.scopes, nil, log)

		require.NoError(t, f.queue.Enqueue(func(ctx context.Context, scope Scope) error {
			return errors.New("task failed")
		}))
		require.NoError(t, f.queue.Enqueue(f.recordTask("next")))

		f.worker.Start(context.Background())
		defer f.worker.Stop()

		f.expect(t, "next")
	})
}

func TestWorker_StateMachine(t *testing.T) {
	f := newWorkerFixture(t)
	assert.Equal(t, StateIdle, f.worker.State())

	release := make(chan struct{})
	require.NoError(t, f.queue.Enqueue(func(ctx context.Context, scope Scope) error {
		<-release
		return nil
	}))

	f.worker.Start(context.Background())

	require.Eventually(t, func() bool { return f.worker.State() == StateExecuting },
		time.Second, 5*time.Millisecond)

	close(release)

	require.Eventually(t, func() bool { return f.worker.State() == StateIdle },
		time.Second, 5*time.Millisecond)

	f.worker.Stop()
	assert.Equal(t, StateStopped, f.worker.State())
	assert.Equal(t, "stopped", f.worker.State().String())
}

func TestWorker_StopWaitsForInFlightTask(t *testing.T) {
	f := newWorkerFixture(t)

	started := make(chan struct{})
	release := make(chan struct{})
	taskCtxErr := make(chan error, 1)

	require.NoError(t, f.queue.Enqueue(func(ctx context.Context, scope Scope) error {
		close(started)
		<-release
		taskCtxErr <- ctx.Err()
		return nil
	}))

	f.worker.Start(context.Background())

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("task did not start")
	}

	stopped := make(chan struct{})
	go func() {
		f.worker.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a task was still executing")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the task finished")
	}

	assert.NoError(t, <-taskCtxErr, "shutdown must not cancel the running task")
	assert.Equal(t, StateStopped, f.worker.State())
}

func TestWorker_RunDropsPendingTasksOnShutdown(t *testing.T) {
	f := newWorkerFixture(t)
	require.NoError(t, f.queue.Enqueue(f.recordTask("never")))
	require.NoError(t, f.queue.Enqueue(f.recordTask("never")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.worker.Run(ctx)

	assert.Equal(t, StateStopped, f.worker.State())
	assert.Empty(t, f.records)

	entries := f.logBuf.EntriesWithMessage("background worker stopped with pending tasks")
	require.Len(t, entries, 1)
	assert.EqualValues(t, 2, entries[0]["dropped_tasks"])
}

func TestWorker_RunReturnsWhenQueueClosed(t *testing.T) {
	f := newWorkerFixture(t)
	require.NoError(t, f.queue.Enqueue(f.recordTask("last")))
	f.queue.Close()

	done := make(chan struct{})
	go func() {
		f.worker.Run(context.Background())
		close(done)
	}()

	f.expect(t, "last")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the queue was closed and drained")
	}
	assert.Equal(t, StateStopped, f.worker.State())
}

func TestWorker_StartIsIdempotent(t *testing.T) {
	f := newWorkerFixture(t)
	assert.Nil(t, f.worker.Done())

	f.worker.Start(context.Background())
	done := f.worker.Done()
	f.worker.Start(context.Background())
	assert.Equal(t, done, f.worker.Done())

	f.worker.Stop()
	f.worker.Stop()

	select {
	case <-done:
	default:
		t.Fatal("Done channel must be closed after Stop")
	}
}

func TestScopeFactoryFunc(t *testing.T) {
	want := &fakeScope{}
	factory := ScopeFactoryFunc(func(ctx context.Context) (Scope, error) { return want, nil })

	got, err := factory.NewScope(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
}
