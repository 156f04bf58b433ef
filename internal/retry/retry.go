package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/jobrank/internal/model"
)

// Policy controls how transient fetch failures are retried.
type Policy struct {
	MaxRetries int           // additional attempts after the first failure
	BaseDelay  time.Duration // delay before the first retry, doubled each time
	MaxDelay   time.Duration // upper bound on a single backoff, zero means none
}

// DefaultPolicy is two retries starting at five seconds.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 2, BaseDelay: 5 * time.Second, MaxDelay: time.Minute}
}

// Fetcher retries transient failures of the wrapped SourceFetcher with
// exponential backoff and jitter.
type Fetcher struct {
	inner  model.SourceFetcher
	policy Policy
	source string
	logger *slog.Logger
}

// NewFetcher wraps inner with retry logic. source is only used for logging.
func NewFetcher(inner model.SourceFetcher, policy Policy, source string, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		inner:  inner,
		policy: policy,
		source: source,
		logger: logger,
	}
}

// FetchRecords fetches, retrying on errors IsRetryable accepts.
func (f *Fetcher) FetchRecords(ctx context.Context) ([]model.RawRecord, error) {
	records, err := f.inner.FetchRecords(ctx)
	for attempt := 1; err != nil && IsRetryable(err) && attempt <= f.policy.MaxRetries; attempt++ {
		delay := f.policy.Backoff(attempt, err)

		f.logger.Warn("retrying after transient error",
			"source", f.source,
			"attempt", attempt,
			"max_retries", f.policy.MaxRetries,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		records, err = f.inner.FetchRecords(ctx)
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Backoff computes the delay before the given retry attempt with ±30% jitter.
// A Retry-After hint on an HTTP 429 takes precedence.
func (p Policy) Backoff(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return p.clamp(httpErr.RetryAfter)
	}

	delay := p.BaseDelay << (attempt - 1)
	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
	return p.clamp(delay)
}

func (p Policy) clamp(d time.Duration) time.Duration {
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// IsRetryable reports whether err is a transient failure: network errors,
// HTTP 429 and 5xx. Cancellation and other 4xx responses are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return true
}
