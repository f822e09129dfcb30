// Package retention bounds storage growth: it drops expired sessions and
// anonymous audit data older than a configurable horizon. Records tied to an
// account are never deleted here; those wait for explicit account-scoped
// deletion.
package retention

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/database"
)

// ErrSweepInProgress is returned when a sweep is requested while another one
// is still running. Overlapping sweeps would double-count deletions.
var ErrSweepInProgress = errors.New("sweep already in progress")

// Result reports what a sweep deleted, or would delete in dry-run mode.
type Result struct {
	SessionsDeleted     int `json:"sessions_deleted"`
	TextsDeleted        int `json:"texts_deleted"`
	ActivityLogsDeleted int `json:"activity_logs_deleted"`
	DryRun              bool `json:"dry_run"`
}

// SessionSweeper is the slice of the session store the sweeper needs.
type SessionSweeper interface {
	CountExpired(ctx context.Context) (int, error)
	DeleteExpired(ctx context.Context) (int, error)
}

// Sweeper deletes expired sessions and stale anonymous records
type Sweeper struct {
	sessions     SessionSweeper
	texts        database.GeneratedTextRepositoryInterface
	activityLogs database.ActivityLogRepositoryInterface
	logger       *zap.Logger
	running      atomic.Bool
}

// NewSweeper creates a retention sweeper
func NewSweeper(
	sessions SessionSweeper,
	texts database.GeneratedTextRepositoryInterface,
	activityLogs database.ActivityLogRepositoryInterface,
	logger *zap.Logger,
) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		sessions:     sessions,
		texts:        texts,
		activityLogs: activityLogs,
		logger:       logger,
	}
}

// Sweep deletes expired sessions plus anonymous generated texts and activity
// logs older than maxAge. With dryRun set it computes the same counts without
// mutating storage. Invocations are single-flight; an overlapping call fails
// with ErrSweepInProgress.
func (s *Sweeper) Sweep(ctx context.Context, maxAge time.Duration, dryRun bool) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	cutoff := time.Now().Add(-maxAge)
	result := &Result{DryRun: dryRun}

	var err error
	if dryRun {
		result.SessionsDeleted, err = s.sessions.CountExpired(ctx)
	} else {
		result.SessionsDeleted, err = s.sessions.DeleteExpired(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sweep sessions: %w", err)
	}

	if dryRun {
		result.TextsDeleted, err = s.texts.CountAnonymousOlderThan(ctx, cutoff)
	} else {
		result.TextsDeleted, err = s.texts.DeleteAnonymousOlderThan(ctx, cutoff)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sweep generated texts: %w", err)
	}

	if dryRun {
		result.ActivityLogsDeleted, err = s.activityLogs.CountAnonymousOlderThan(ctx, cutoff)
	} else {
		result.ActivityLogsDeleted, err = s.activityLogs.DeleteAnonymousOlderThan(ctx, cutoff)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sweep activity logs: %w", err)
	}

	s.logger.Info("retention_sweep_complete",
		zap.Bool("dry_run", dryRun),
		zap.Duration("max_age", maxAge),
		zap.Int("sessions_deleted", result.SessionsDeleted),
		zap.Int("texts_deleted", result.TextsDeleted),
		zap.Int("activity_logs_deleted", result.ActivityLogsDeleted),
	)

	return result, nil
}

// Run executes Sweep on a fixed interval until ctx is cancelled. Used by the
// maintenance worker. A sweep that is still running when the ticker fires is
// skipped rather than overlapped.
func (s *Sweeper) Run(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, maxAge, false); err != nil {
				if errors.Is(err, ErrSweepInProgress) {
					s.logger.Warn("retention_sweep_skipped_overlap")
					continue
				}
				s.logger.Error("retention_sweep_failed", zap.Error(err))
			}
		}
	}
}
