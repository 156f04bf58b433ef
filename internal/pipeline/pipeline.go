// Package pipeline runs fetch, normalize, filter, score, rank and persist for
// a set of configured sources.
package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobrank/internal/model"
	"github.com/amishk599/jobrank/internal/normalize"
	"github.com/amishk599/jobrank/internal/scoring"
	"github.com/amishk599/jobrank/internal/similarity"
)

const (
	defaultWorkers      = 4
	defaultFetchTimeout = 30 * time.Second
)

// Mode selects whether already-seen postings are filtered out.
type Mode int

const (
	// ModeAll keeps every posting.
	ModeAll Mode = iota
	// ModeNotifyNew keeps only postings never seen before and marks them seen.
	ModeNotifyNew
)

func (m Mode) String() string {
	if m == ModeNotifyNew {
		return "notify_new"
	}
	return "all"
}

type state string

const (
	stateIdle        state = "idle"
	stateFetching    state = "fetching"
	stateNormalizing state = "normalizing"
	stateFiltering   state = "filtering"
	stateScoring     state = "scoring"
	stateSorting     state = "sorting"
	statePersisting  state = "persisting"
)

// Resolver builds the fetcher for a source descriptor.
type Resolver interface {
	Resolve(src model.SourceDescriptor) (model.SourceFetcher, error)
}

// Recorder receives run statistics. internal/metrics implements it.
type Recorder interface {
	SourceFetched(source string, records int)
	SourceFailed(source string)
	RecordsDropped(source string, n int)
	RunFinished(outcome string, persisted int, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) SourceFetched(string, int)              {}
func (nopRecorder) SourceFailed(string)                    {}
func (nopRecorder) RecordsDropped(string, int)             {}
func (nopRecorder) RunFinished(string, int, time.Duration) {}

// Config holds the tunables of a Pipeline.
type Config struct {
	Workers           int           // concurrent fetches, default 4
	FetchTimeout      time.Duration // per source, default 30s
	DropRedirectLinks bool
	Scoring           scoring.Options
}

// Request describes one run.
type Request struct {
	Sources     []model.SourceDescriptor
	Preferences model.Preferences
	Mode        Mode
	Resume      string // resume text; empty disables similarity
	DryRun      bool   // rank without persisting or marking seen
}

// Pipeline executes runs. It holds no per-run state and may be shared.
type Pipeline struct {
	resolver   Resolver
	gateway    model.Gateway
	seen       model.SeenStore
	normalizer *normalize.Normalizer
	matcher    similarity.Matcher
	recorder   Recorder
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMatcher sets the resume matcher. The default is TF-IDF.
func WithMatcher(m similarity.Matcher) Option {
	return func(p *Pipeline) { p.matcher = m }
}

// WithRecorder sets the statistics sink.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithClock overrides time.Now for fetch timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline wired with all its dependencies.
func New(resolver Resolver, gateway model.Gateway, seen model.SeenStore, cfg Config, logger *slog.Logger, opts ...Option) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	p := &Pipeline{
		resolver:   resolver,
		gateway:    gateway,
		seen:       seen,
		normalizer: normalize.New(normalize.WithDropRedirectLinks(cfg.DropRedirectLinks)),
		matcher:    similarity.NewTFIDF(),
		recorder:   nopRecorder{},
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// fetched is one worker's isolated output.
type fetched struct {
	src       model.SourceDescriptor
	records   []model.RawRecord
	fetchedAt time.Time
	report    SourceReport
}

// Run executes one run. Source failures are reported in Result.Sources; the
// run fails only when every source failed, storage failed, or ctx was
// cancelled before persistence. A cancelled run leaves storage untouched.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), StartedAt: p.now()}
	logger := p.logger.With("run_id", res.RunID, "mode", req.Mode.String())

	p.enter(logger, stateFetching)
	batches := p.fetchAll(ctx, logger, req.Sources)
	if err := ctx.Err(); err != nil {
		p.enter(logger, stateIdle)
		p.recorder.RunFinished("cancelled", 0, time.Since(res.StartedAt))
		return nil, fmt.Errorf("run %s cancelled: %w", res.RunID, err)
	}

	for _, b := range batches {
		res.Sources = append(res.Sources, b.report)
		res.Fetched += len(b.records)
	}
	if len(req.Sources) > 0 && res.Succeeded() == 0 {
		p.enter(logger, stateIdle)
		p.recorder.RunFinished("failed", 0, time.Since(res.StartedAt))
		return nil, &TotalFailureError{Sources: res.Sources}
	}

	p.enter(logger, stateNormalizing)
	jobs := p.normalizeAll(logger, batches, res)

	p.enter(logger, stateFiltering)
	jobs = p.filter(ctx, logger, jobs, req.Mode, res)

	p.enter(logger, stateScoring)
	p.score(ctx, logger, jobs, req.Preferences, req.Resume)

	p.enter(logger, stateSorting)
	Rank(jobs)
	res.Jobs = jobs

	if err := ctx.Err(); err != nil {
		p.enter(logger, stateIdle)
		p.recorder.RunFinished("cancelled", 0, time.Since(res.StartedAt))
		return nil, fmt.Errorf("run %s cancelled: %w", res.RunID, err)
	}

	if !req.DryRun {
		p.enter(logger, statePersisting)
		if err := p.persist(ctx, logger, req.Mode, res); err != nil {
			p.enter(logger, stateIdle)
			p.recorder.RunFinished("failed", 0, time.Since(res.StartedAt))
			return nil, err
		}
	}

	res.FinishedAt = p.now()
	p.enter(logger, stateIdle)
	p.recorder.RunFinished("ok", res.Persisted, time.Since(res.StartedAt))

	logger.Info("run complete",
		"sources", res.Summary(),
		"fetched", res.Fetched,
		"dropped", res.Dropped,
		"duplicates", res.Duplicates,
		"filtered", res.Filtered,
		"ranked", len(res.Jobs),
		"persisted", res.Persisted,
	)
	return res, nil
}

func (p *Pipeline) enter(logger *slog.Logger, s state) {
	logger.Debug("pipeline state", "state", string(s))
}

// fetchAll fetches every source on a bounded worker pool. Each worker writes
// only its own slot.
func (p *Pipeline) fetchAll(ctx context.Context, logger *slog.Logger, sources []model.SourceDescriptor) []fetched {
	out := make([]fetched, len(sources))

	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	for i, src := range sources {
		g.Go(func() error {
			out[i] = p.fetchOne(ctx, logger, src)
			return nil
		})
	}
	g.Wait()
	return out
}

func (p *Pipeline) fetchOne(ctx context.Context, logger *slog.Logger, src model.SourceDescriptor) fetched {
	f := fetched{src: src, report: SourceReport{Name: src.Name, Kind: src.Kind}}
	start := time.Now()

	fetcher, err := p.resolver.Resolve(src)
	if err != nil {
		if errors.Is(err, model.ErrUnknownKind) {
			logger.Warn("skipping source with unknown kind", "source", src.Name, "kind", src.Kind)
		} else {
			logger.Warn("skipping misconfigured source", "source", src.Name, "error", err)
		}
		f.report.Err = err
		p.recorder.SourceFailed(src.Name)
		return f
	}

	fctx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	defer cancel()

	records, err := fetcher.FetchRecords(fctx)
	f.report.Duration = time.Since(start)
	f.fetchedAt = p.now()
	if err != nil {
		logger.Warn("source fetch failed", "source", src.Name, "kind", src.Kind, "error", err)
		f.report.Err = err
		p.recorder.SourceFailed(src.Name)
		return f
	}

	f.records = records
	f.report.Records = len(records)
	p.recorder.SourceFetched(src.Name, len(records))
	logger.Debug("source fetched", "source", src.Name, "records", len(records), "duration", f.report.Duration)
	return f
}

// normalizeAll converts records in source order and collapses postings that
// share an identity within this run; the first occurrence wins.
func (p *Pipeline) normalizeAll(logger *slog.Logger, batches []fetched, res *Result) []model.Job {
	var jobs []model.Job
	ids := make(map[string]bool)
	for _, b := range batches {
		dropped := 0
		for _, raw := range b.records {
			job, err := p.normalizer.Normalize(raw, b.src, b.fetchedAt)
			if err != nil {
				logger.Debug("dropping record", "source", b.src.Name, "error", err)
				dropped++
				continue
			}
			if ids[job.ID] {
				res.Duplicates++
				continue
			}
			ids[job.ID] = true
			jobs = append(jobs, job)
		}
		if dropped > 0 {
			res.Dropped += dropped
			p.recorder.RecordsDropped(b.src.Name, dropped)
		}
	}
	return jobs
}

// filter drops already-seen postings in notify mode. A seen-store read error
// keeps the posting.
func (p *Pipeline) filter(ctx context.Context, logger *slog.Logger, jobs []model.Job, mode Mode, res *Result) []model.Job {
	if mode != ModeNotifyNew {
		return jobs
	}
	kept := jobs[:0]
	for _, j := range jobs {
		seen, err := p.seen.IsSeen(ctx, j.ID)
		if err != nil {
			logger.Warn("seen lookup failed, keeping posting", "job_id", j.ID, "error", err)
		}
		if seen {
			res.Filtered++
			continue
		}
		kept = append(kept, j)
	}
	return kept
}

func (p *Pipeline) score(ctx context.Context, logger *slog.Logger, jobs []model.Job, prefs model.Preferences, resume string) {
	scorer := scoring.New(prefs, p.cfg.Scoring)
	for i := range jobs {
		scorer.Apply(&jobs[i])
		jobs[i].Similarity = nil
	}
	p.applySimilarity(ctx, logger, jobs, resume)
}

func (p *Pipeline) applySimilarity(ctx context.Context, logger *slog.Logger, jobs []model.Job, resume string) {
	if resume == "" || len(jobs) == 0 || p.matcher == nil {
		return
	}
	docs := make([]string, len(jobs))
	for i, j := range jobs {
		docs[i] = j.Text()
	}
	sims, err := p.matcher.Similarity(ctx, resume, docs)
	if err != nil || len(sims) != len(jobs) {
		logger.Warn("resume similarity unavailable", "error", err, "results", len(sims))
		return
	}
	for i := range jobs {
		v := sims[i]
		jobs[i].Similarity = &v
	}
}

// persist writes the ranked postings with a context detached from
// cancellation, then marks them seen in notify mode.
func (p *Pipeline) persist(ctx context.Context, logger *slog.Logger, mode Mode, res *Result) error {
	pctx := context.WithoutCancel(ctx)

	if err := p.gateway.Upsert(pctx, res.Jobs); err != nil {
		return &PersistenceError{Err: err}
	}
	res.Persisted = len(res.Jobs)

	if mode == ModeNotifyNew {
		for _, j := range res.Jobs {
			meta := model.SeenMeta{Title: j.Title, Link: j.Link, Source: j.Source}
			if err := p.seen.MarkSeen(pctx, j.ID, meta); err != nil {
				logger.Warn("marking posting seen failed", "job_id", j.ID, "error", err)
			}
		}
	}

	run := model.RunRecord{
		ID:         res.RunID,
		StartedAt:  res.StartedAt,
		FinishedAt: p.now(),
		Fetched:    res.Fetched,
		Persisted:  res.Persisted,
		SourcesOK:  res.Succeeded(),
	}
	run.SourcesFailed = len(res.Sources) - run.SourcesOK
	if err := p.gateway.RecordRun(pctx, run); err != nil {
		logger.Warn("recording run failed", "error", err)
	}
	return nil
}

// Rescore recomputes score, skills, role relevance and similarity for every
// stored posting and writes them back. Content, fetched_at and status are left
// alone. It returns the number of postings rescored.
func (p *Pipeline) Rescore(ctx context.Context, prefs model.Preferences, resume string) (int, error) {
	jobs, err := p.gateway.List(ctx, model.Query{})
	if err != nil {
		return 0, fmt.Errorf("rescoring: %w", err)
	}
	p.score(ctx, p.logger, jobs, prefs, resume)
	if err := p.gateway.UpdateScores(ctx, jobs); err != nil {
		return 0, fmt.Errorf("rescoring: %w", err)
	}
	p.logger.Info("rescored stored postings", "count", len(jobs))
	return len(jobs), nil
}

// Rank sorts jobs in place by score descending, then posted date descending
// with unknown dates last. Equal keys keep their input order.
func Rank(jobs []model.Job) {
	slices.SortStableFunc(jobs, compareRank)
}

func compareRank(a, b model.Job) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	switch {
	case a.PostedAt == nil && b.PostedAt == nil:
		return 0
	case a.PostedAt == nil:
		return 1
	case b.PostedAt == nil:
		return -1
	}
	return b.PostedAt.Compare(*a.PostedAt)
}
