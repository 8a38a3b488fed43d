package core

// retention.go removes entries older than the configured retention window.
//
// The purge runs on a cron schedule and is context-aware for graceful
// shutdown. Failed runs are logged and retried at the next tick.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// RetentionConfig holds configuration for the retention scheduler.
type RetentionConfig struct {
	Days     int    // Entries older than this are purged; 0 disables retention
	Schedule string // Cron spec or descriptor (default: "@daily")
}

// PurgeEntries deletes entries created more than days days ago.
func (s *Service) PurgeEntries(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("retention days must be positive, got %d", days)
	}

	cutoff := s.now().AddDate(0, 0, -days)
	purged, err := s.store.DeleteEntriesBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge entries: %w", err)
	}

	s.metrics.EntriesPurged(purged)
	return purged, nil
}

// StartRetentionScheduler purges old entries on cfg.Schedule until ctx is
// cancelled. It returns immediately when retention is disabled and returns an
// error for an invalid schedule.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) error {
	if cfg.Days <= 0 {
		slog.Info("retention disabled")
		return nil
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@daily"
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() { s.runRetentionJob(ctx, cfg) }); err != nil {
		return fmt.Errorf("retention schedule %q: %w", cfg.Schedule, err)
	}

	slog.Info("retention scheduler started",
		"retention_days", cfg.Days,
		"schedule", cfg.Schedule,
	)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("retention scheduler stopped")
	return nil
}

// runRetentionJob performs one purge.
func (s *Service) runRetentionJob(ctx context.Context, cfg RetentionConfig) {
	start := s.now()

	purged, err := s.PurgeEntries(ctx, cfg.Days)
	if err != nil {
		slog.Error("retention purge failed", "error", err)
		return
	}

	slog.Info("purged old entries",
		"entries_purged", purged,
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
}
