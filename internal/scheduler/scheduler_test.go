package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startScheduler(s *Scheduler) (context.CancelFunc, chan error) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	return cancel, done
}

func TestRun_ImmediateFirstRun(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(time.Hour, func(context.Context) error {
		calls.Add(1)
		return nil
	}, discardLogger())

	cancel, done := startScheduler(s)
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 immediate run", got)
	}
}

func TestRun_CancelReturnsPromptly(t *testing.T) {
	s := NewScheduler(time.Hour, func(context.Context) error { return nil }, discardLogger())

	cancel, done := startScheduler(s)
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
}

func TestRun_TicksOnInterval(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(time.Second, func(context.Context) error {
		calls.Add(1)
		return nil
	}, discardLogger())

	cancel, done := startScheduler(s)
	// Immediate run plus at least one tick.
	time.Sleep(1500 * time.Millisecond)
	cancel()
	<-done

	if got := calls.Load(); got < 2 {
		t.Errorf("calls = %d, want >= 2", got)
	}
}

func TestRun_ErrorsDoNotStopTicking(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(time.Second, func(context.Context) error {
		calls.Add(1)
		return errors.New("all sources failed")
	}, discardLogger())

	cancel, done := startScheduler(s)
	time.Sleep(1500 * time.Millisecond)
	cancel()
	<-done

	if got := calls.Load(); got < 2 {
		t.Errorf("calls = %d, want >= 2 despite errors", got)
	}
}

func TestRun_SkipsTickWhileRunning(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(time.Second, func(ctx context.Context) error {
		calls.Add(1)
		select {
		case <-ctx.Done():
		case <-time.After(1800 * time.Millisecond):
		}
		return nil
	}, discardLogger())

	cancel, done := startScheduler(s)
	time.Sleep(1500 * time.Millisecond)
	cancel()
	<-done

	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (tick during a run is skipped)", got)
	}
}

func TestRun_RejectsNonPositiveInterval(t *testing.T) {
	s := NewScheduler(0, func(context.Context) error { return nil }, discardLogger())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestRun_WaitsForImmediateRunOnCancel(t *testing.T) {
	var finished atomic.Bool
	s := NewScheduler(time.Hour, func(ctx context.Context) error {
		<-ctx.Done()
		// persistence outlives the cancel
		time.Sleep(300 * time.Millisecond)
		finished.Store(true)
		return nil
	}, discardLogger())

	cancel, done := startScheduler(s)
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if !finished.Load() {
		t.Error("Run returned before the immediate run finished")
	}
}
