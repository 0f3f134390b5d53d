package core

import (
	"context"
	"log/slog"
	"time"
)

// Runner is one unit of scheduled work.
type Runner interface {
	Run(ctx context.Context) (*CycleReport, error)
}

type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{runner: runner, interval: interval, logger: logger}
}

// Run checks once immediately and then on every tick until ctx is done. A
// failed cycle is logged and the loop keeps going.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.runner.Run(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("scheduled check failed", "error", err)
	}
}
