package feed

import (
	"context"
	"sync"

	"github.com/realtorist/realtorist-api/internal/domain"
)

// sourceLocks serialises updates of the same listing source. Flows built by
// one Factory share it, so a queued manual update and the cron job never
// interleave their upserts and stale-listing cleanup.
type sourceLocks struct {
	mu    sync.Mutex
	slots map[domain.ListingSource]chan struct{}
}

func newSourceLocks() *sourceLocks {
	return &sourceLocks{slots: make(map[domain.ListingSource]chan struct{})}
}

// acquire blocks until source is free or ctx is done. The returned func
// releases the source.
func (l *sourceLocks) acquire(ctx context.Context, source domain.ListingSource) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[source]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[source] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
