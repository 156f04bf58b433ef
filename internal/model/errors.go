package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by Gateway.Get and SetStatus for unknown identities.
	ErrNotFound = errors.New("job not found")
	// ErrUnknownKind is returned when no adapter exists for a source kind.
	ErrUnknownKind = errors.New("unknown source kind")
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NormalizationError reports why a raw record could not become a Job.
type NormalizationError struct {
	Source string
	Title  string
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize record %q from %s: %s", e.Title, e.Source, e.Reason)
}
