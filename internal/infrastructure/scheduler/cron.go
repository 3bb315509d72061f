package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"CRMDashboard/internal/logging"
	"CRMDashboard/internal/ports"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// CronScheduler runs a job on a standard 5-field cron expression.
type CronScheduler struct {
	spec       string
	location   *time.Location
	runOnStart bool
	logger     *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
	wg   sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler validates spec up front. runOnStart fires the job once
// immediately after Start.
func NewCronScheduler(spec string, location *time.Location, runOnStart bool, logger *slog.Logger) (*CronScheduler, error) {
	spec = strings.TrimSpace(spec)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", spec, err)
	}
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{
		spec:       spec,
		location:   location,
		runOnStart: runOnStart,
		logger:     logging.Component(logger, "scheduler"),
	}, nil
}

// Next reports the first activation after t.
func (c *CronScheduler) Next(t time.Time) time.Time {
	sched, _ := parser.Parse(c.spec)
	return sched.Next(t.In(c.location))
}

// Start registers job and begins scheduling. It stops on its own when ctx
// is done. Starting twice is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	runner := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(c.location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := runner.AddFunc(c.spec, func() { job(time.Now().In(c.location)) }); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	runner.Start()
	c.cron = runner

	c.logger.Info("scheduler started", "cron", c.spec, "timezone", c.location.String(),
		"next", c.Next(time.Now()).Format(time.RFC3339))

	if c.runOnStart {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			job(time.Now().In(c.location))
		}()
	}

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()

	return nil
}

// Stop halts scheduling and waits for running jobs, including the one
// fired on start, until ctx is done.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner := c.cron
	c.cron = nil
	c.mu.Unlock()

	if runner == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		<-runner.Stop().Done()
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running job: %w", ctx.Err())
	}
}
