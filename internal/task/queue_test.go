package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/realtorist/realtorist-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labelled returns a task that appends label to *out when invoked.
func labelled(label string, mu *sync.Mutex, out *[]string) Task {
	return func(ctx context.Context, scope Scope) error {
		mu.Lock()
		defer mu.Unlock()
		*out = append(*out, label)
		return nil
	}
}

func newTestQueue(t *testing.T, capacity int) *BackgroundQueue {
	t.Helper()
	log, _ := logger.NewTestLogger()
	return NewBackgroundQueue(capacity, log)
}

func TestNewBackgroundQueue(t *testing.T) {
	q := newTestQueue(t, 5)
	assert.Equal(t, 5, q.Cap())
	assert.Equal(t, 0, q.Len())

	q = newTestQueue(t, 0)
	assert.Equal(t, DefaultQueueCapacity, q.Cap())

	q = NewBackgroundQueue(-1, nil)
	assert.Equal(t, DefaultQueueCapacity, q.Cap())
}

func TestBackgroundQueue_FIFO(t *testing.T) {
	q := newTestQueue(t, 10)

	var (
		mu  sync.Mutex
		got []string
	)
	for _, label := range []string{"A", "B", "C"} {
		require.NoError(t, q.Enqueue(labelled(label, &mu, &got)))
	}
	assert.Equal(t, 3, q.Len())

	for i := 0; i < 3; i++ {
		task, err := q.Dequeue(context.Background())
		require.NoError(t, err)
		require.NoError(t, task(context.Background(), nil))
	}

	assert.Equal(t, []string{"A", "B", "C"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestBackgroundQueue_EnqueueNil(t *testing.T) {
	q := newTestQueue(t, 1)
	assert.ErrorIs(t, q.Enqueue(nil), ErrNilTask)
	assert.Equal(t, 0, q.Len())
}

func TestBackgroundQueue_CapacityExceeded(t *testing.T) {
	q := newTestQueue(t, 3)
	noop := func(ctx context.Context, scope Scope) error { return nil }

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(noop))
	}

	err := q.Enqueue(noop)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Contains(t, err.Error(), "capacity 3")
	assert.Equal(t, 3, q.Len())

	_, err = q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.NoError(t, q.Enqueue(noop), "a slot frees up after a dequeue")
}

func TestBackgroundQueue_DequeueWaitsForEnqueue(t *testing.T) {
	q := newTestQueue(t, 1)

	var (
		mu  sync.Mutex
		got []string
	)
	result := make(chan Task, 1)
	errCh := make(chan error, 1)

	go func() {
		task, err := q.Dequeue(context.Background())
		if err != nil {
			errCh <- err
			return
		}
		result <- task
	}()

	select {
	case <-result:
		t.Fatal("Dequeue returned before anything was enqueued")
	case err := <-errCh:
		t.Fatalf("Dequeue failed: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, q.Enqueue(labelled("late", &mu, &got)))

	select {
	case task := <-result:
		require.NoError(t, task(context.Background(), nil))
		assert.Equal(t, []string{"late"}, got)
	case err := <-errCh:
		t.Fatalf("Dequeue failed: %v", err)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after Enqueue")
	}
}

func TestBackgroundQueue_DequeueCancelledWhileWaiting(t *testing.T) {
	q := newTestQueue(t, 1)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not observe cancellation")
	}
	assert.Equal(t, 0, q.Len())
}

func TestBackgroundQueue_DequeueAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("empty queue", func(t *testing.T) {
		q := newTestQueue(t, 1)

		done := make(chan error, 1)
		go func() {
			_, err := q.Dequeue(ctx)
			done <- err
		}()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("Dequeue hung on an already-cancelled context")
		}
		assert.Equal(t, 0, q.Len())
	})

	t.Run("pending tasks are left in place", func(t *testing.T) {
		q := newTestQueue(t, 2)
		noop := func(ctx context.Context, scope Scope) error { return nil }
		require.NoError(t, q.Enqueue(noop))
		require.NoError(t, q.Enqueue(noop))

		task, err := q.Dequeue(ctx)

		assert.Nil(t, task)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 2, q.Len())
	})
}

func TestBackgroundQueue_DequeueDeadline(t *testing.T) {
	q := newTestQueue(t, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackgroundQueue_ConcurrentProducers(t *testing.T) {
	const (
		producers   = 10
		perProducer = 10
		total       = producers * perProducer
	)

	q := newTestQueue(t, total)

	type item struct{ producer, seq int }
	var (
		mu   sync.Mutex
		seen []item
	)
	record := func(it item) Task {
		return func(ctx context.Context, scope Scope) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, it)
			return nil
		}
	}

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for s := 0; s < perProducer; s++ {
				assert.NoError(t, q.Enqueue(record(item{p, s})))
			}
		}(p)
	}
	wg.Wait()

	for i := 0; i < total; i++ {
		task, err := q.Dequeue(context.Background())
		require.NoError(t, err)
		require.NoError(t, task(context.Background(), nil))
	}

	require.Len(t, seen, total)

	unique := make(map[item]struct{}, total)
	lastSeq := make(map[int]int, producers)
	for p := 0; p < producers; p++ {
		lastSeq[p] = -1
	}
	for _, it := range seen {
		unique[it] = struct{}{}
		assert.Greater(t, it.seq, lastSeq[it.producer], "tasks from one producer must stay in order")
		lastSeq[it.producer] = it.seq
	}
	assert.Len(t, unique, total, "every task is dequeued exactly once")
	assert.Equal(t, 0, q.Len())
}

func TestBackgroundQueue_Close(t *testing.T) {
	q := newTestQueue(t, 2)

	var (
		mu  sync.Mutex
		got []string
	)
	require.NoError(t, q.Enqueue(labelled("pending", &mu, &got)))

	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Enqueue(labelled("late", &mu, &got)), ErrQueueClosed)

	task, err := q.Dequeue(context.Background())
	require.NoError(t, err, "pending tasks drain after Close")
	require.NoError(t, task(context.Background(), nil))
	assert.Equal(t, []string{"pending"}, got)

	_, err = q.Dequeue(context.Background())
	assert.True(t, errors.Is(err, ErrQueueClosed))
}

func TestBackgroundQueue_CloseWakesConsumer(t *testing.T) {
	q := newTestQueue(t, 1)

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("Close did not wake the waiting consumer")
	}
}
