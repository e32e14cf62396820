// Package ratelimit gates submission frequency per client identity
// with two independent layers: a process-local last-seen map and an
// eventually-consistent query against the persistent store. The
// persistent layer fails open; availability of the submission path
// outranks strict enforcement.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"trust-lab/domain"
)

// RecentActivityStore is the persistent layer's read side. The limiter
// never writes to it; the store's own accept path records identities
// alongside each persisted submission.
type RecentActivityStore interface {
	HasRecentSubmission(ctx context.Context, identity string, since time.Time) (bool, error)
}

type Config struct {
	// Window is how long an identity stays limited after a submission.
	Window time.Duration
	// MaxEntries triggers the opportunistic purge of the local map.
	MaxEntries int
	// QueryTimeout bounds the persistent-store lookup.
	QueryTimeout time.Duration
}

const (
	DefaultWindow       = 5 * time.Minute
	DefaultMaxEntries   = 10_000
	DefaultQueryTimeout = 2 * time.Second
)

// Limiter is shared by all request handlers; the map is guarded by its
// own mutex. Two racing requests from one identity may both pass; the
// fail-open design accepts that bounded imprecision.
type Limiter struct {
	window       time.Duration
	maxEntries   int
	queryTimeout time.Duration
	store        RecentActivityStore
	log          *slog.Logger
	now          func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewLimiter builds a limiter. A nil store disables the persistent
// layer entirely.
func NewLimiter(cfg Config, store RecentActivityStore, log *slog.Logger) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	return &Limiter{
		window:       cfg.Window,
		maxEntries:   cfg.MaxEntries,
		queryTimeout: cfg.QueryTimeout,
		store:        store,
		log:          log,
		now:          time.Now,
	}
}

// IsLimited evaluates both layers, short-circuiting on the first that
// limits. Identities that pass get their local timestamp stamped to
// now.
func (l *Limiter) IsLimited(ctx context.Context, identity string) bool {
	now := l.now()

	if l.localLimited(identity, now) {
		return true
	}

	// The sentinel identity would lump every unidentified client into
	// one bucket; the persistent layer must never see it.
	if identity == domain.UnknownIdentity || l.store == nil {
		return false
	}

	queryCtx, cancel := context.WithTimeout(ctx, l.queryTimeout)
	defer cancel()

	recent, err := l.store.HasRecentSubmission(queryCtx, identity, now.Add(-l.window))
	if err != nil {
		// Fail open: a broken store must not make the site unusable.
		l.log.Warn("rate-limit store query failed, failing open",
			"component", "ratelimit", "identity", identity, "error", err)
		return false
	}
	return recent
}

func (l *Limiter) localLimited(identity string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lastSeen == nil {
		l.lastSeen = make(map[string]time.Time)
	}

	if last, ok := l.lastSeen[identity]; ok && now.Sub(last) < l.window {
		return true
	}

	if len(l.lastSeen) >= l.maxEntries {
		l.purgeStale(now)
	}
	l.lastSeen[identity] = now
	return false
}

// purgeStale drops entries older than twice the window. Amortized into
// the check path on purpose: no background goroutine to supervise.
func (l *Limiter) purgeStale(now time.Time) {
	cutoff := now.Add(-2 * l.window)
	for identity, last := range l.lastSeen {
		if last.Before(cutoff) {
			delete(l.lastSeen, identity)
		}
	}
}

// LocalEntries reports the current size of the in-process map, for
// stats endpoints.
func (l *Limiter) LocalEntries() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lastSeen)
}
