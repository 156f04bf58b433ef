package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work, typically a pipeline run.
type Job func(ctx context.Context) error

// Scheduler triggers a Job on a fixed interval using cron. A tick that fires
// while the previous run is still going is skipped.
type Scheduler struct {
	interval time.Duration
	job      Job
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs job every interval. cron
// schedules have one-second resolution.
func NewScheduler(interval time.Duration, job Job, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		job:      job,
		logger:   logger,
	}
}

// Run runs one immediate cycle, then ticks on the configured interval. It
// returns nil once ctx is cancelled and any in-flight run has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %v", s.interval)
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug))
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	id := c.Schedule(cron.Every(s.interval), cron.FuncJob(func() { s.runOnce(ctx) }))

	s.logger.Info("starting scheduler", "interval", s.interval.String())
	c.Start()

	// The immediate run goes through the wrapped job so a first tick that
	// lands during it is skipped too. cron does not track it, so it gets its
	// own wait group.
	var first sync.WaitGroup
	first.Add(1)
	go func() {
		defer first.Done()
		c.Entry(id).WrappedJob.Run()
	}()

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	first.Wait()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err, "elapsed", time.Since(start))
		return
	}
	s.logger.Debug("scheduled run finished", "elapsed", time.Since(start))
}
