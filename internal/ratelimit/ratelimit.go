package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/jobrank/internal/model"
)

// KindLimiter paces requests per source kind. Sources of the same kind
// usually hit the same backend, so they share one token bucket.
type KindLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	minDelay  time.Duration
	overrides map[string]time.Duration
}

// NewKindLimiter creates a limiter that allows one request per minDelay for
// each kind. overrides replaces minDelay for individual kinds. A zero delay
// disables pacing for that kind.
func NewKindLimiter(minDelay time.Duration, overrides map[string]time.Duration) *KindLimiter {
	return &KindLimiter{
		limiters:  make(map[string]*rate.Limiter),
		minDelay:  minDelay,
		overrides: overrides,
	}
}

// DelayFor returns the configured gap for kind.
func (l *KindLimiter) DelayFor(kind string) time.Duration {
	if d, ok := l.overrides[kind]; ok {
		return d
	}
	return l.minDelay
}

func (l *KindLimiter) limiter(kind string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[kind]
	if !ok {
		limit := rate.Inf
		if d := l.DelayFor(kind); d > 0 {
			limit = rate.Every(d)
		}
		lim = rate.NewLimiter(limit, 1)
		l.limiters[kind] = lim
	}
	return lim
}

// Wait blocks until a request for kind is allowed or ctx is done.
func (l *KindLimiter) Wait(ctx context.Context, kind string) error {
	if err := l.limiter(kind).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", kind, err)
	}
	return nil
}

// RateLimitedFetcher waits for the shared limiter before delegating to the
// wrapped fetcher.
type RateLimitedFetcher struct {
	inner   model.SourceFetcher
	limiter *KindLimiter
	kind    string
}

// NewRateLimitedFetcher wraps a SourceFetcher with per-kind pacing.
// All fetchers of the same kind should share the same limiter instance.
func NewRateLimitedFetcher(inner model.SourceFetcher, limiter *KindLimiter, kind string) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: limiter,
		kind:    kind,
	}
}

// FetchRecords waits for the limiter, then fetches.
func (f *RateLimitedFetcher) FetchRecords(ctx context.Context) ([]model.RawRecord, error) {
	if err := f.limiter.Wait(ctx, f.kind); err != nil {
		return nil, err
	}
	return f.inner.FetchRecords(ctx)
}
