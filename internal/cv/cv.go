// Package cv renders a tailored copy of a base resume for each notified
// posting. The base resume is a text/template file; each render gets the
// posting's title, company and its top extracted skills.
package cv

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/amishk599/jobrank/internal/model"
)

// DefaultTopSkills is how many skills TopSkills carries when Options leave it unset.
const DefaultTopSkills = 8

const (
	maxMatchedSkills = 15
	maxSlugLen       = 60
	fallbackTitle    = "Target Role"
)

// Options configure a Renderer.
type Options struct {
	TemplatePath string
	OutputDir    string
	TopSkills    int
	Name         string
	Email        string
}

// Data is what the base resume template sees.
type Data struct {
	Name          string
	Email         string
	Title         string
	Company       string
	Location      string
	Link          string
	Score         float64
	TopSkills     []string
	MatchedSkills []string
	Generated     time.Time
}

var funcs = template.FuncMap{
	"join":  strings.Join,
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// Renderer writes one markdown CV per posting into the output directory.
type Renderer struct {
	tmpl   *template.Template
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// New parses the base resume template at opts.TemplatePath.
func New(opts Options, logger *slog.Logger) (*Renderer, error) {
	if opts.TemplatePath == "" {
		return nil, fmt.Errorf("cv template path is required")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("cv output directory is required")
	}
	if opts.TopSkills <= 0 {
		opts.TopSkills = DefaultTopSkills
	}

	tmpl, err := template.New(filepath.Base(opts.TemplatePath)).Funcs(funcs).ParseFiles(opts.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("parse cv template: %w", err)
	}
	return &Renderer{tmpl: tmpl, opts: opts, logger: logger, now: time.Now}, nil
}

// Render writes the CV for job and returns its path. Nothing is written when
// the template fails to execute.
func (r *Renderer) Render(job model.Job) (string, error) {
	data := r.data(job)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render cv for job %s: %w", job.ID, err)
	}

	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create cv output dir: %w", err)
	}
	path := filepath.Join(r.opts.OutputDir, fileName(data, job.ID))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write cv: %w", err)
	}
	return path, nil
}

// Attach renders a CV for every job and records its path on the job. A failed
// render is logged and leaves that job without a CV.
func (r *Renderer) Attach(jobs []model.Job) {
	for i := range jobs {
		path, err := r.Render(jobs[i])
		if err != nil {
			r.logger.Warn("cv generation failed", "job", jobs[i].ID, "error", err)
			continue
		}
		jobs[i].CVPath = path
		r.logger.Debug("cv written", "job", jobs[i].ID, "path", path)
	}
}

func (r *Renderer) data(job model.Job) Data {
	title := strings.TrimSpace(job.Title)
	if title == "" {
		title = fallbackTitle
	}
	company := strings.TrimSpace(job.Company)
	if company == "" {
		company = linkHost(job.Link)
	}
	return Data{
		Name:          r.opts.Name,
		Email:         r.opts.Email,
		Title:         title,
		Company:       company,
		Location:      job.Location,
		Link:          job.Link,
		Score:         job.Score,
		TopSkills:     head(job.Skills, r.opts.TopSkills),
		MatchedSkills: head(job.Skills, maxMatchedSkills),
		Generated:     r.now().UTC(),
	}
}

func linkHost(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// fileName is <title>-<company>-<id prefix>-<timestamp>.md. The id prefix
// keeps two postings with the same title and company apart within a second.
func fileName(d Data, id string) string {
	base := slugify(d.Title + " " + d.Company)
	if base == "" {
		base = "cv"
	}
	if len(id) > 8 {
		id = id[:8]
	}
	if id != "" {
		base += "-" + id
	}
	return base + "-" + d.Generated.Format("20060102-150405") + ".md"
}

// slugify lowercases s, strips accents and collapses everything else that is
// not a letter or digit into single hyphens.
func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	var b strings.Builder
	hyphen := false
	for _, c := range strings.ToLower(s) {
		if c < unicode.MaxASCII && (unicode.IsLetter(c) || unicode.IsDigit(c)) {
			b.WriteRune(c)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSlugLen {
		out = strings.TrimRight(out[:maxSlugLen], "-")
	}
	return out
}
