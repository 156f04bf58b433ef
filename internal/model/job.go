package model

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle flag of a stored posting.
type Status string

const (
	StatusNew     Status = "new"
	StatusSeen    Status = "seen"
	StatusApplied Status = "applied"
)

// ParseStatus maps a user-supplied string onto a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusNew:
		return StatusNew, nil
	case StatusSeen:
		return StatusSeen, nil
	case StatusApplied:
		return StatusApplied, nil
	default:
		return "", fmt.Errorf("unknown status %q (want new, seen or applied)", s)
	}
}

// Job is the canonical representation of a posting from any source.
type Job struct {
	ID            string     // content hash, primary and dedup key
	Title         string     // job title
	Company       string     // company name
	Location      string     // location string
	Description   string     // plain text, HTML stripped
	Link          string     // canonical apply link
	Source        string     // descriptor name the posting came from
	PostedAt      *time.Time // nullable (not all sources provide this)
	FetchedAt     time.Time  // our clock, set at ingestion
	Score         float64    // keyword relevance, always >= 0
	Skills        []string   // ordered set, first-seen order
	RoleRelevance float64    // 0..100, zero when no target role is configured
	Similarity    *float64   // resume similarity in [0,1], nil when no resume is configured
	Status        Status
	CVPath        string // tailored CV written for this posting in the current run, not stored
}

// Text returns the title and description joined the way scoring and similarity read them.
func (j Job) Text() string {
	return j.Title + "\n" + j.Description
}

// RawRecord is the shape every source adapter returns. Fields are copied as-is
// from the source; the normalizer owns cleaning and validation.
type RawRecord struct {
	ExternalID  string // source-specific id, if any
	Title       string
	Link        string
	Description string // may contain HTML
	Company     string
	Location    string
	Date        string // raw date string in whatever format the source uses
}

// SourceKind selects the adapter used for a source.
type SourceKind string

const (
	KindFeed       SourceKind = "feed"
	KindJSON       SourceKind = "json"
	KindLever      SourceKind = "lever"
	KindGreenhouse SourceKind = "greenhouse"
	KindAshby      SourceKind = "ashby"
	KindHTML       SourceKind = "html"
)

// HTMLSelectors are the CSS selectors used by the html adapter.
type HTMLSelectors struct {
	Item        string
	Title       string
	Link        string
	Company     string
	Location    string
	Description string
	Date        string
}

// SourceDescriptor describes one configured source.
type SourceDescriptor struct {
	Name       string
	Kind       SourceKind
	URL        string // feed, json and html endpoints
	BoardToken string // lever, greenhouse and ashby board slug
	Company    string // fallback company name
	Identity   string // "external_id" to key postings by source id instead of title+link
	Selectors  HTMLSelectors
}

// Preferences are the user's matching criteria. Empty lists match everything.
type Preferences struct {
	Titles          []string
	IncludeKeywords []string
	ExcludeKeywords []string
	Locations       []string
	Role            string // optional single target role for role-relevance tiering
}

// SeenMeta is stored alongside a seen identity for diagnostics.
type SeenMeta struct {
	Title  string
	Link   string
	Source string
}

// Query filters and bounds a gateway listing.
type Query struct {
	Role     string  // substring of title
	Location string  // substring of location
	Status   Status  // empty means any
	MinScore float64 // inclusive lower bound on score
	Limit    int     // zero means no limit
}

// RunRecord summarizes one pipeline run for the runs table.
type RunRecord struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	Fetched       int
	Persisted     int
	SourcesOK     int
	SourcesFailed int
}

// SourceFetcher fetches raw records from one source.
type SourceFetcher interface {
	FetchRecords(ctx context.Context) ([]RawRecord, error)
}

// SeenStore tracks which identities have already been surfaced.
type SeenStore interface {
	IsSeen(ctx context.Context, id string) (bool, error)
	MarkSeen(ctx context.Context, id string, meta SeenMeta) error
	Reset(ctx context.Context) error
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// Gateway is the durable store of postings.
type Gateway interface {
	Upsert(ctx context.Context, jobs []Job) error
	Get(ctx context.Context, id string) (Job, error)
	List(ctx context.Context, q Query) ([]Job, error)
	SetStatus(ctx context.Context, id string, status Status) error
	UpdateScores(ctx context.Context, jobs []Job) error
	Clear(ctx context.Context) error
	RecordRun(ctx context.Context, run RunRecord) error
}

// Notifier sends notifications for newly surfaced postings.
type Notifier interface {
	Notify(jobs []Job) error
}
