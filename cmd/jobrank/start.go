package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobrank/internal/api"
	"github.com/amishk599/jobrank/internal/config"
	"github.com/amishk599/jobrank/internal/pipeline"
	"github.com/amishk599/jobrank/internal/scheduler"
)

var startAddr string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduling daemon",
	Long: "Runs the pipeline in notify mode on the configured interval; blocks until SIGINT/SIGTERM.\n" +
		"Edits to the config file are picked up without a restart and stored postings are re-scored.",
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startAddr, "addr", "", "also serve the HTTP API on this address (default: server.addr from config)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	logger.Info("config loaded",
		"interval", cfg.Interval.String(),
		"sources", len(cfg.EnabledSources()),
		"titles", len(cfg.Preferences.Titles),
		"locations", len(cfg.Preferences.Locations),
		"notifier", cfg.Notification.Type,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to set up", "error", err)
		return err
	}
	defer a.Close()

	addr := startAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := config.Watch(ctx, cfg.Path, logger, func() { a.reload(ctx) }); err != nil {
			logger.Warn("config hot reload disabled", "error", err)
		}
		return nil
	})

	if addr != "" {
		srv := api.New(a.store, func(ctx context.Context) (*pipeline.Result, error) {
			return a.runOnce(ctx, pipeline.ModeNotifyNew, false)
		}, a.metrics.Handler(), logger)
		g.Go(func() error { return srv.ListenAndServe(ctx, addr) })
	}

	g.Go(func() error {
		sched := scheduler.NewScheduler(cfg.Interval, func(ctx context.Context) error {
			_, err := a.runOnce(ctx, pipeline.ModeNotifyNew, false)
			if errors.Is(err, pipeline.ErrRunInProgress) {
				logger.Info("skipping scheduled run, an API-triggered run is still going")
				return nil
			}
			return err
		}, logger)
		return sched.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("daemon stopped", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}

// reload re-reads the config file and re-scores stored postings against the
// new preferences, waiting for any in-flight run first. A broken file keeps
// the previous config. The schedule
// interval, storage and dedup backend only change on restart.
func (a *app) reload(ctx context.Context) {
	prev := a.config()
	cfg, err := loadConfig(prev.Path)
	if err != nil {
		a.logger.Error("config reload failed, keeping previous config", "error", err)
		return
	}
	if cfg.Interval != prev.Interval || cfg.Storage != prev.Storage || cfg.Dedup != prev.Dedup {
		a.logger.Warn("schedule, storage and dedup changes take effect after a restart")
	}
	a.setConfig(cfg)
	a.logger.Info("config reloaded", "sources", len(cfg.EnabledSources()))

	resume, err := cfg.LoadResume()
	if err != nil {
		a.logger.Warn("resume unavailable, re-scoring without it", "error", err)
	}

	a.runMu.Lock()
	n, err := a.pipeline(cfg, false).Rescore(ctx, cfg.Preferences, resume)
	a.runMu.Unlock()
	if err != nil {
		a.logger.Error("re-scoring stored postings failed", "error", err)
		return
	}
	a.logger.Info("stored postings re-scored", "count", n)
}
