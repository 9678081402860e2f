package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pricewatch/pricewatch/pkg/model"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// SchedulerOptions tunes the background loops.
type SchedulerOptions struct {
	// SweepInterval is the time between full sweeps. Defaults to one hour.
	SweepInterval time.Duration

	// RetentionDays is how long price observations are kept before the
	// nightly prune removes them. Defaults to 90.
	RetentionDays int
}

// Scheduler runs the engine's periodic work: interval sweeps, the
// nightly stats rollup at 00:05 UTC, and the history prune at 03:00 UTC.
type Scheduler struct {
	engine *Engine
	store  storage.Storage
	logger *slog.Logger
	opts   SchedulerOptions

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewScheduler creates a scheduler over the given engine.
func NewScheduler(eng *Engine, store storage.Storage, logger *slog.Logger, opts SchedulerOptions) *Scheduler {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Hour
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = 90
	}
	return &Scheduler{
		engine: eng,
		store:  store,
		logger: logger,
		opts:   opts,
	}
}

// Start launches the background loops. Calling Start on a running
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx)
	s.logger.Info("scheduler started",
		"sweep_interval", s.opts.SweepInterval,
		"retention_days", s.opts.RetentionDays)
}

// Stop cancels the loops and waits for them to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}

// Running reports whether the background loops are active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	sweep := time.NewTicker(s.opts.SweepInterval)
	defer sweep.Stop()

	rollup := time.NewTimer(untilNext(time.Now().UTC(), 0, 5))
	defer rollup.Stop()

	prune := time.NewTimer(untilNext(time.Now().UTC(), 3, 0))
	defer prune.Stop()

	// First sweep right away so a fresh process is not idle for a full
	// interval.
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			s.sweep(ctx)
		case <-rollup.C:
			s.rollupStats(ctx)
			rollup.Reset(untilNext(time.Now().UTC(), 0, 5))
		case <-prune.C:
			s.pruneHistory(ctx)
			prune.Reset(untilNext(time.Now().UTC(), 3, 0))
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	now := time.Now().UTC()
	if expired, err := s.store.ExpireRules(ctx, now); err != nil {
		s.logger.Error("expire rules", "error", err)
	} else if expired > 0 {
		s.logger.Info("rules expired", "count", expired)
	}

	if err := s.engine.RunSweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("scheduled sweep failed", "error", err)
	}
}

// rollupStats writes yesterday's counters as a DailyStats row and
// resets them for the new day.
func (s *Scheduler) rollupStats(ctx context.Context) {
	checks, alerts, errors, notifications := s.engine.ResetDailyCounters()

	total, err := s.store.CountItems(ctx)
	if err != nil {
		s.logger.Error("count items for rollup", "error", err)
	}

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	stats := &model.DailyStats{
		ID:                 uuid.NewString(),
		StatDate:           time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC),
		TotalItems:         total,
		ChecksToday:        checks,
		AlertsToday:        alerts,
		NotificationsToday: notifications,
		ErrorsToday:        errors,
	}
	if err := s.store.InsertDailyStats(ctx, stats); err != nil {
		s.logger.Error("insert daily stats", "error", err)
		return
	}
	s.logger.Info("daily stats recorded",
		"date", stats.StatDate.Format("2006-01-02"),
		"checks", checks, "alerts", alerts, "errors", errors)
}

func (s *Scheduler) pruneHistory(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.opts.RetentionDays)
	pruned, err := s.store.PruneObservations(ctx, cutoff)
	if err != nil {
		s.logger.Error("prune observations", "error", err)
		return
	}
	s.logger.Info("observation history pruned", "removed", pruned, "cutoff", cutoff)
}

// untilNext returns the duration from now until the next occurrence of
// the given UTC wall-clock time.
func untilNext(now time.Time, hour, minute int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
