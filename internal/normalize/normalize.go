// Package normalize turns raw source records into canonical postings.
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/unicode/norm"

	"github.com/amishk599/jobrank/internal/model"
)

const (
	untitled = "(no title)"

	// IdentityExternalID keys postings by source name and source id.
	IdentityExternalID = "external_id"
)

// Normalizer converts raw records into jobs. It performs no I/O.
type Normalizer struct {
	dropRedirects bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithDropRedirectLinks rejects links that look like redirect or tracking portals.
func WithDropRedirectLinks(drop bool) Option {
	return func(n *Normalizer) { n.dropRedirects = drop }
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize maps raw onto a model.Job stamped with fetchedAt. Records without a
// usable link fail with *model.NormalizationError.
func (n *Normalizer) Normalize(raw model.RawRecord, src model.SourceDescriptor, fetchedAt time.Time) (model.Job, error) {
	title := collapse(raw.Title)
	if title == "" {
		title = untitled
	}

	link, err := CanonicalLink(raw.Link, src.URL, n.dropRedirects)
	if err != nil {
		return model.Job{}, &model.NormalizationError{Source: src.Name, Title: title, Reason: err.Error()}
	}

	company := collapse(raw.Company)
	if company == "" {
		company = collapse(src.Company)
	}
	if company == "" {
		company = hostCompany(link)
	}

	job := model.Job{
		Title:       title,
		Company:     company,
		Location:    collapse(raw.Location),
		Description: ExtractText(raw.Description),
		Link:        link,
		Source:      src.Name,
		PostedAt:    ParseDate(raw.Date),
		FetchedAt:   fetchedAt,
		Status:      model.StatusNew,
	}

	externalID := strings.TrimSpace(raw.ExternalID)
	if src.Identity == IdentityExternalID && externalID != "" {
		job.ID = ExternalIdentity(src.Name, externalID)
	} else {
		job.ID = Identity(title, link)
	}
	return job, nil
}

// Identity is the SHA-1 hex digest of the normalized title and canonical link.
func Identity(title, link string) string {
	return hashHex(NormalizeTitle(title) + "|" + link)
}

// ExternalIdentity keys a posting by its source and the source's own id.
func ExternalIdentity(source, externalID string) string {
	return hashHex(source + "|" + externalID)
}

// NormalizeTitle applies NFKC, lower-cases and collapses whitespace.
func NormalizeTitle(title string) string {
	return collapse(strings.ToLower(norm.NFKC.String(title)))
}

// ParseDate parses s in any common layout. It returns nil when s is empty or
// unparseable; dates are best effort.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// zone-less dates are read as UTC
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func hashHex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
