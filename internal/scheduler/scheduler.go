package scheduler

import (
	"context"
	"fmt"
	"time"

	"equity-dashboard/observability"

	"github.com/robfig/cron/v3"
)

// ExpiredCacheCleaner deletes cache rows past their expiry
type ExpiredCacheCleaner interface {
	CleanExpiredCache(ctx context.Context) (int64, error)
}

// Scheduler runs background maintenance on cron schedules
type Scheduler struct {
	cron    *cron.Cron
	cleaner ExpiredCacheCleaner
	ctx     context.Context
	timeout time.Duration
}

// NewScheduler creates a new Scheduler. Specs use the standard five-field
// format or descriptors such as "@hourly".
func NewScheduler(ctx context.Context, cleaner ExpiredCacheCleaner) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		cleaner: cleaner,
		ctx:     ctx,
		timeout: 30 * time.Second,
	}
}

// RegisterJanitor schedules the expired cache cleanup
func (s *Scheduler) RegisterJanitor(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.cleanCache); err != nil {
		return fmt.Errorf("register cache janitor %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	observability.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	observability.Info("scheduler stopped")
}

// CleanNow runs the cache janitor immediately and returns the rows removed
func (s *Scheduler) CleanNow() (int64, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	return s.cleaner.CleanExpiredCache(ctx)
}

func (s *Scheduler) cleanCache() {
	n, err := s.CleanNow()
	if err != nil {
		observability.Error("cache janitor failed", "error", err)
		return
	}
	if n > 0 {
		observability.Info("expired cache entries removed", "count", n)
	}
}
