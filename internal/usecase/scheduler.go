package usecase

import (
	"context"
	"log/slog"
	"time"

	"CRMDashboard/internal/logging"
	"CRMDashboard/internal/ports"
)

// Scheduler wires the cron-like driver with the dashboard refresh.
type Scheduler struct {
	driver    ports.Scheduler
	dashboard *Dashboard
	timeout   time.Duration
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring refreshes. Each
// run is bounded by timeout when it is positive.
func NewScheduler(driver ports.Scheduler, dashboard *Dashboard, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		driver:    driver,
		dashboard: dashboard,
		timeout:   timeout,
		logger:    logging.Component(logger, "refresh-job"),
	}
}

// Start registers the refresh with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.dashboard == nil {
		return nil
	}

	job := func(trigger time.Time) {
		runCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		if _, err := s.dashboard.Refresh(runCtx); err != nil {
			s.logger.Error("scheduled refresh failed", "trigger", trigger.Format(time.RFC3339), "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
