package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/jobrank/internal/adapter"
	"github.com/amishk599/jobrank/internal/ai"
	"github.com/amishk599/jobrank/internal/config"
	"github.com/amishk599/jobrank/internal/cv"
	"github.com/amishk599/jobrank/internal/metrics"
	"github.com/amishk599/jobrank/internal/model"
	"github.com/amishk599/jobrank/internal/notifier"
	"github.com/amishk599/jobrank/internal/pipeline"
	"github.com/amishk599/jobrank/internal/ratelimit"
	"github.com/amishk599/jobrank/internal/retry"
	"github.com/amishk599/jobrank/internal/scoring"
	"github.com/amishk599/jobrank/internal/similarity"
	"github.com/amishk599/jobrank/internal/store"
)

// app holds the long-lived dependencies shared by the commands. Storage and
// the seen backend are fixed for the process; the rest is rebuilt from the
// current config on every run so reloads take effect.
type app struct {
	logger  *slog.Logger
	client  *http.Client
	store   *store.SQLStore
	seen    model.SeenStore
	redis   *redis.Client
	metrics *metrics.Metrics
	limiter *ratelimit.KindLimiter

	mu  sync.RWMutex
	cfg *config.Config

	// runMu serializes pipeline runs and re-scoring.
	runMu sync.Mutex
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	st, err := store.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &app{
		logger:  logger,
		client:  &http.Client{Timeout: 30 * time.Second},
		store:   st,
		metrics: metrics.New(),
		limiter: ratelimit.NewKindLimiter(cfg.RateLimit.MinDelay, cfg.RateLimit.KindOverrides),
		cfg:     cfg,
	}

	switch cfg.Dedup.Backend {
	case "redis":
		client, err := store.NewRedisClient(ctx, cfg.Dedup.RedisURL)
		if err != nil {
			st.Close()
			return nil, err
		}
		a.redis = client
		a.seen = store.NewRedisSeenStore(client, "", cfg.Dedup.Retention)
	case "none":
		a.seen = store.NewNopSeenStore()
	default:
		a.seen = st
	}

	logger.Debug("app ready",
		"storage", cfg.Storage.Driver,
		"dedup", cfg.Dedup.Backend,
		"min_delay", cfg.RateLimit.MinDelay.String(),
	)
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store failed", "error", err)
	}
}

func (a *app) config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *app) setConfig(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
}

func (a *app) registry(cfg *config.Config) *adapter.Registry {
	reg := adapter.NewRegistry(a.client)
	policy := retry.Policy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay,
		MaxDelay:   cfg.Retry.MaxDelay,
	}
	// every retry attempt goes back through the kind's rate limiter
	reg.Wrap = func(src model.SourceDescriptor, f model.SourceFetcher) model.SourceFetcher {
		f = ratelimit.NewRateLimitedFetcher(f, a.limiter, string(src.Kind))
		return retry.NewFetcher(f, policy, src.Name, a.logger)
	}
	return reg
}

func (a *app) matcher(cfg *config.Config) similarity.Matcher {
	if cfg.Similarity.Method != "embedding" {
		return similarity.NewTFIDF()
	}
	provider := ai.NewOpenAIProvider(
		cfg.Similarity.BaseURL,
		cfg.Similarity.APIKey,
		cfg.Similarity.Model,
		&http.Client{Timeout: cfg.Similarity.Timeout},
	)
	return similarity.NewEmbedding(provider)
}

// pipeline builds a pipeline for cfg. dryRun swaps the gateway and seen store
// for no-ops.
func (a *app) pipeline(cfg *config.Config, dryRun bool) *pipeline.Pipeline {
	var (
		gateway model.Gateway   = a.store
		seen    model.SeenStore = a.seen
	)
	if dryRun {
		gateway = store.NewNopGateway()
		seen = store.NewNopSeenStore()
	}

	return pipeline.New(a.registry(cfg), gateway, seen, pipeline.Config{
		Workers:           cfg.Pipeline.Workers,
		FetchTimeout:      cfg.Pipeline.FetchTimeout,
		DropRedirectLinks: cfg.Pipeline.DropRedirectLinks,
		Scoring: scoring.Options{
			Weights:    cfg.Scoring.Weights,
			Vocabulary: cfg.Scoring.Skills,
		},
	}, a.logger, pipeline.WithMatcher(a.matcher(cfg)), pipeline.WithRecorder(a.metrics))
}

// request assembles the run request from cfg.
func (a *app) request(cfg *config.Config, mode pipeline.Mode, dryRun bool) (pipeline.Request, error) {
	resume, err := cfg.LoadResume()
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Sources:     cfg.EnabledSources(),
		Preferences: cfg.Preferences,
		Mode:        mode,
		Resume:      resume,
		DryRun:      dryRun,
	}, nil
}

// runOnce executes one pipeline run against the current config. In notify
// mode the newly surfaced postings are sent to the configured notifier. It
// returns pipeline.ErrRunInProgress instead of overlapping another run.
func (a *app) runOnce(ctx context.Context, mode pipeline.Mode, dryRun bool) (*pipeline.Result, error) {
	if !a.runMu.TryLock() {
		return nil, pipeline.ErrRunInProgress
	}
	defer a.runMu.Unlock()

	cfg := a.config()

	if cfg.Dedup.Retention > 0 && !dryRun {
		if err := a.seen.Cleanup(ctx, cfg.Dedup.Retention); err != nil {
			a.logger.Warn("seen cleanup failed", "error", err)
		}
	}

	req, err := a.request(cfg, mode, dryRun)
	if err != nil {
		return nil, err
	}

	res, err := a.pipeline(cfg, dryRun).Run(ctx, req)
	if err != nil {
		return nil, err
	}

	a.logger.Info(res.Summary(),
		"run_id", res.RunID,
		"fetched", res.Fetched,
		"ranked", len(res.Jobs),
		"persisted", res.Persisted,
	)
	for _, f := range res.Failed() {
		a.logger.Warn("source failed", "source", f.Name, "kind", f.Kind, "error", f.Err)
	}

	if mode == pipeline.ModeNotifyNew && !dryRun && len(res.Jobs) > 0 {
		n, err := setupNotifier(cfg, a.client, a.logger)
		if err != nil {
			return res, err
		}
		jobs := notifier.Cap(res.Jobs, cfg.Notification.MaxJobs)
		a.attachCVs(cfg, jobs)
		if err := n.Notify(jobs); err != nil {
			a.logger.Error("notification failed", "error", err)
		}
	}
	return res, nil
}

// attachCVs renders a tailored CV for each job when a base resume template is
// configured.
func (a *app) attachCVs(cfg *config.Config, jobs []model.Job) {
	if !cfg.CV.Enabled() {
		return
	}
	r, err := cv.New(cv.Options{
		TemplatePath: cfg.CV.Template,
		OutputDir:    cfg.CV.OutputDir,
		TopSkills:    cfg.CV.TopSkills,
		Name:         cfg.CV.Name,
		Email:        cfg.CV.Email,
	}, a.logger)
	if err != nil {
		a.logger.Warn("cv generation disabled for this run", "error", err)
		return
	}
	r.Attach(jobs)
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Notifier, error) {
	switch cfg.Notification.Type {
	case "slack":
		logger.Debug("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger), nil
	case "telegram":
		logger.Debug("using telegram notifier")
		n, err := notifier.NewTelegramNotifier(cfg.Notification.TelegramToken, cfg.Notification.TelegramChatID, "", httpClient, logger)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return notifier.NewLogNotifier(logger), nil
	}
}
