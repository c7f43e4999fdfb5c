package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"vibe-stock-dashboard/internal/logger"
)

// Refresher rebuilds every configured board, bypassing the cache.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// Scheduler keeps the board cache warm on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	ctx       context.Context
	timeout   time.Duration
	runs      atomic.Int64
}

// NewScheduler uses six-field cron specs (with seconds). A run still in
// progress when the next one is due causes that tick to be skipped.
func NewScheduler(ctx context.Context, refresher Refresher, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		refresher: refresher,
		ctx:       ctx,
		timeout:   timeout,
	}
}

func (s *Scheduler) RegisterRefresh(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info(s.ctx, "Scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for a running refresh to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Warn(ctx, "Scheduler stop timed out waiting for running job")
	}
	logger.Info(ctx, "Scheduler stopped", "runs", s.runs.Load())
}

// RunNow executes the refresh task immediately (used on startup).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

// Runs reports how many refreshes have been executed.
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

func (s *Scheduler) refreshTask() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	timer := logger.StartOperation(ctx, "scheduler.refresh")
	s.runs.Add(1)
	if err := s.refresher.RefreshAll(timer.GetContext()); err != nil {
		timer.EndWithError(err)
		return
	}
	timer.End()
}
