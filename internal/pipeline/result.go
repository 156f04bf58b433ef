package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amishk599/jobrank/internal/model"
)

// SourceReport is the outcome of fetching one source.
type SourceReport struct {
	Name     string
	Kind     model.SourceKind
	Records  int
	Err      error
	Duration time.Duration
}

// OK reports whether the source was fetched without error.
func (r SourceReport) OK() bool { return r.Err == nil }

// Result is the outcome of one pipeline run.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	// Jobs is the ranked sequence, best first.
	Jobs    []model.Job
	Sources []SourceReport

	Fetched    int // raw records across all sources
	Dropped    int // records the normalizer rejected
	Duplicates int // postings collapsed within this run
	Filtered   int // postings removed because they were already seen
	Persisted  int
}

// Succeeded returns how many sources were fetched without error.
func (r *Result) Succeeded() int {
	n := 0
	for _, s := range r.Sources {
		if s.OK() {
			n++
		}
	}
	return n
}

// Failed returns the reports of sources that errored.
func (r *Result) Failed() []SourceReport {
	var failed []SourceReport
	for _, s := range r.Sources {
		if !s.OK() {
			failed = append(failed, s)
		}
	}
	return failed
}

// Summary renders the user-facing source count.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d of %d sources returned results", r.Succeeded(), len(r.Sources))
}

// ErrRunInProgress is returned by callers that serialize runs when one is
// already executing.
var ErrRunInProgress = errors.New("a run is already in progress")

// TotalFailureError is returned when no source could be fetched. It carries
// every per-source reason.
type TotalFailureError struct {
	Sources []SourceReport
}

func (e *TotalFailureError) Error() string {
	reasons := make([]string, 0, len(e.Sources))
	for _, s := range e.Sources {
		reasons = append(reasons, fmt.Sprintf("%s: %v", s.Name, s.Err))
	}
	return fmt.Sprintf("all %d sources failed: %s", len(e.Sources), strings.Join(reasons, "; "))
}

// PersistenceError is returned when the ranked postings could not be stored.
// Nothing is marked seen when it occurs.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting ranked postings: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
