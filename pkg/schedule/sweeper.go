// Package schedule runs the periodic background work of the engine: scoring
// recent telemetry per tool on a cron schedule and pruning aged decision
// history.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"aegis-hq/minerva/pkg/audit"
	"aegis-hq/minerva/pkg/history"
	"aegis-hq/minerva/pkg/risk"
)

// Batch is one tool's recent telemetry, ready to score.
type Batch struct {
	ToolID     string
	Region     string
	TimeWindow string
	Atoms      []risk.Atom
}

// AtomSource supplies the telemetry batches a sweep should score.
type AtomSource interface {
	// PendingBatches returns one batch per tool with recent activity.
	PendingBatches(ctx context.Context) ([]Batch, error)
}

// Config contains configuration for the sweeper.
type Config struct {
	// SweepSchedule is the cron expression for scoring sweeps
	// (e.g. "0 * * * *" for hourly). Empty disables sweeping.
	SweepSchedule string

	// RetentionSchedule is the cron expression for history pruning
	// (e.g. "0 3 * * *" for daily at 3 AM). Empty disables pruning.
	RetentionSchedule string

	// RetentionDays is how long decisions are kept before pruning.
	// Default: 90
	RetentionDays int
}

// DefaultConfig returns the default sweeper configuration.
func DefaultConfig() *Config {
	return &Config{
		SweepSchedule:     "0 * * * *",
		RetentionSchedule: "0 3 * * *",
		RetentionDays:     90,
	}
}

// Sweeper schedules background scoring sweeps and history pruning.
type Sweeper struct {
	source   AtomSource
	scorer   *risk.Scorer
	recorder *audit.Recorder
	store    history.Store
	config   *Config
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper. The source, recorder, and store may be nil;
// the corresponding work is then skipped.
func NewSweeper(source AtomSource, scorer *risk.Scorer, recorder *audit.Recorder, store history.Store, config *Config, logger *slog.Logger) *Sweeper {
	if config == nil {
		config = DefaultConfig()
	}
	if config.RetentionDays <= 0 {
		config.RetentionDays = 90
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		source:   source,
		scorer:   scorer,
		recorder: recorder,
		store:    store,
		config:   config,
		cron:     cron.New(),
		logger:   logger.With("component", "schedule.sweeper"),
	}
}

// Start begins the scheduled work. With both schedules empty it does nothing.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.SweepSchedule == "" && s.config.RetentionSchedule == "" {
		s.logger.Info("no schedules configured, skipping sweeper")
		return nil
	}

	if s.config.SweepSchedule != "" && s.source != nil {
		if _, err := cron.ParseStandard(s.config.SweepSchedule); err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", s.config.SweepSchedule, err)
		}
		if _, err := s.cron.AddFunc(s.config.SweepSchedule, func() {
			s.runSweep(ctx)
		}); err != nil {
			return fmt.Errorf("failed to schedule sweep: %w", err)
		}
	}

	if s.config.RetentionSchedule != "" && s.store != nil {
		if _, err := cron.ParseStandard(s.config.RetentionSchedule); err != nil {
			return fmt.Errorf("invalid retention schedule %q: %w", s.config.RetentionSchedule, err)
		}
		if _, err := s.cron.AddFunc(s.config.RetentionSchedule, func() {
			s.runRetention(ctx)
		}); err != nil {
			return fmt.Errorf("failed to schedule retention: %w", err)
		}
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("sweeper started",
		"sweep_schedule", s.config.SweepSchedule,
		"retention_schedule", s.config.RetentionSchedule,
		"retention_days", s.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSweep scores every pending batch and audits the results.
func (s *Sweeper) runSweep(ctx context.Context) {
	s.logger.Info("starting scheduled risk sweep")

	batches, err := s.source.PendingBatches(ctx)
	if err != nil {
		s.logger.Error("failed to load pending batches", "error", err)
		return
	}

	scored := 0
	for _, batch := range batches {
		score := s.scorer.Score(ctx, batch.Atoms, risk.Options{
			Region:     batch.Region,
			ToolID:     batch.ToolID,
			TimeWindow: batch.TimeWindow,
		})
		scored++

		if score.RiskLevel == risk.LevelHigh || score.RiskLevel == risk.LevelCritical {
			s.logger.Warn("elevated risk detected in sweep",
				"tool_id", batch.ToolID,
				"total", score.Total,
				"risk_level", score.RiskLevel,
			)
		}

		if s.recorder != nil {
			if err := s.recorder.Record(ctx, audit.KindRiskScore, "", batch.ToolID, string(score.RiskLevel), score); err != nil {
				s.logger.Error("failed to audit sweep score",
					"tool_id", batch.ToolID,
					"error", err,
				)
			}
		}
	}

	s.logger.Info("risk sweep completed", "batches_scored", scored)
}

// runRetention prunes decisions older than the retention window.
func (s *Sweeper) runRetention(ctx context.Context) {
	olderThan := time.Now().AddDate(0, 0, -s.config.RetentionDays)

	deleted, err := s.store.Cleanup(ctx, olderThan)
	if err != nil {
		s.logger.Error("scheduled history pruning failed", "error", err)
		return
	}

	if deleted > 0 {
		s.logger.Info("history pruning completed", "deleted_count", deleted)
	} else {
		s.logger.Debug("history pruning completed, no decisions deleted")
	}
}

// Stop stops the scheduler and waits for running jobs to complete.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.running = false
		s.logger.Info("sweeper stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled job time, or nil when nothing is
// scheduled.
func (s *Sweeper) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	for _, entry := range entries[1:] {
		if entry.Next.Before(next) {
			next = entry.Next
		}
	}
	return &next
}
