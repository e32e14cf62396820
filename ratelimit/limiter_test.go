package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trust-lab/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeStore records queries and returns a scripted answer.
type fakeStore struct {
	mu      sync.Mutex
	queries []string
	recent  bool
	err     error
}

func (f *fakeStore) HasRecentSubmission(_ context.Context, identity string, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, identity)
	return f.recent, f.err
}

func (f *fakeStore) queried() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func newTestLimiter(store RecentActivityStore, window time.Duration) *Limiter {
	return NewLimiter(Config{Window: window}, store, testLogger())
}

func TestLimiter_SecondCallWithinWindow(t *testing.T) {
	req := require.New(t)
	l := newTestLimiter(nil, time.Minute)
	ctx := context.Background()

	req.False(l.IsLimited(ctx, "10.0.0.1"))
	req.True(l.IsLimited(ctx, "10.0.0.1"))

	// A different identity is unaffected.
	req.False(l.IsLimited(ctx, "10.0.0.2"))
}

func TestLimiter_WindowExpiry(t *testing.T) {
	req := require.New(t)
	l := newTestLimiter(nil, time.Minute)
	ctx := context.Background()

	base := time.Now()
	l.now = func() time.Time { return base }
	req.False(l.IsLimited(ctx, "10.0.0.1"))

	l.now = func() time.Time { return base.Add(61 * time.Second) }
	req.False(l.IsLimited(ctx, "10.0.0.1"))
}

func TestLimiter_RapidBurst(t *testing.T) {
	req := require.New(t)
	l := newTestLimiter(nil, 5*time.Minute)
	ctx := context.Background()

	req.False(l.IsLimited(ctx, "device-fp-1"))
	for i := 2; i <= 12; i++ {
		req.True(l.IsLimited(ctx, "device-fp-1"), "request %d", i)
	}
}

func TestLimiter_UnknownNeverHitsStore(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	l := newTestLimiter(store, time.Minute)
	ctx := context.Background()

	req.False(l.IsLimited(ctx, domain.UnknownIdentity))
	req.Empty(store.queried())
}

func TestLimiter_PersistentLayer(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{recent: true}
	l := newTestLimiter(store, time.Minute)
	ctx := context.Background()

	// Layer 1 passes (first sight), layer 2 limits.
	req.True(l.IsLimited(ctx, "10.0.0.9"))
	req.Equal([]string{"10.0.0.9"}, store.queried())
}

func TestLimiter_StoreErrorFailsOpen(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{err: fmt.Errorf("store unavailable")}
	l := newTestLimiter(store, time.Minute)
	ctx := context.Background()

	req.False(l.IsLimited(ctx, "10.0.0.9"))
}

func TestLimiter_LocalShortCircuitsStore(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	l := newTestLimiter(store, time.Minute)
	ctx := context.Background()

	req.False(l.IsLimited(ctx, "10.0.0.1"))
	req.True(l.IsLimited(ctx, "10.0.0.1"))
	// Only the first, non-limited call may reach the store.
	req.Equal([]string{"10.0.0.1"}, store.queried())
}

func TestLimiter_OpportunisticPurge(t *testing.T) {
	req := require.New(t)
	l := NewLimiter(Config{Window: time.Minute, MaxEntries: 5}, nil, testLogger())
	ctx := context.Background()

	base := time.Now()
	l.now = func() time.Time { return base }
	for i := 0; i < 5; i++ {
		l.IsLimited(ctx, fmt.Sprintf("old-%d", i))
	}
	req.Equal(5, l.LocalEntries())

	// Past twice the window, the next check purges the stale entries.
	l.now = func() time.Time { return base.Add(3 * time.Minute) }
	l.IsLimited(ctx, "fresh")
	req.Equal(1, l.LocalEntries())
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	l := newTestLimiter(nil, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.IsLimited(ctx, fmt.Sprintf("ip-%d", n%7))
		}(i)
	}
	wg.Wait()
	require.Equal(t, 7, l.LocalEntries())
}
