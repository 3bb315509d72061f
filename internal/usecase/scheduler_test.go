package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CRMDashboard/internal/logging"
)

type fakeDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *fakeDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *fakeDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsRefresh(t *testing.T) {
	t.Parallel()

	source := &fakeSource{snap: testSnapshot(t)}
	cache := &fakeCache{}
	d := newTestDashboard(t, DashboardDeps{Source: source, Cache: cache})

	driver := &fakeDriver{}
	s := NewScheduler(driver, d, time.Second, logging.Discard())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if driver.job == nil {
		t.Fatal("expected job to be registered")
	}

	driver.job(time.Now())
	if source.fetchCount() != 1 || cache.stored != 1 {
		t.Fatalf("expected one refresh, got fetches=%d stored=%d", source.fetchCount(), cache.stored)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !driver.stopped {
		t.Fatal("expected driver to be stopped")
	}
}

func TestSchedulerSurvivesFailedRefresh(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: errors.New("down")}
	d := newTestDashboard(t, DashboardDeps{Source: source})

	driver := &fakeDriver{}
	s := NewScheduler(driver, d, 0, logging.Discard())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	driver.job(time.Now())
	driver.job(time.Now())
	if source.fetchCount() != 2 {
		t.Fatalf("expected both runs to reach the source, got %d", source.fetchCount())
	}
}

func TestSchedulerWithoutDriverIsNoop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, 0, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
