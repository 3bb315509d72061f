package crmapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"CRMDashboard/internal/domain"
)

type collectionJob struct {
	name string
	run  func(ctx context.Context) error
}

func load[T any](c *Client, path string, dst *[]T) func(context.Context) error {
	return func(ctx context.Context) error {
		items, err := fetchPage[T](ctx, c, path, nil)
		if err != nil {
			return err
		}
		*dst = items
		return nil
	}
}

// FetchSnapshot loads every collection concurrently. A failing collection
// is logged, reported to the recorder and left empty; only cancellation of
// ctx fails the whole snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	var (
		snap  domain.Snapshot
		wires []wireAssignment
		calls []domain.CallLog
	)

	jobs := []collectionJob{
		{name: "employees", run: load(c, "employees/", &snap.Employees)},
		{name: "clients", run: load(c, "clients/", &snap.Clients)},
		{name: "leads", run: load(c, "leads/", &snap.Leads)},
		{name: "projects", run: load(c, "projects/", &snap.Projects)},
		{name: "assignments", run: load(c, "assignments/", &wires)},
		{name: "calllogs", run: load(c, "call-logs/", &calls)},
		{name: "followups", run: load(c, "followups/", &snap.FollowUps)},
		{name: "tracking", run: load(c, "tracking/", &snap.Tracking)},
		{name: "tasks", run: load(c, "tasks/", &snap.Tasks)},
	}

	failed := make([]bool, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			err := job.run(gctx)
			if err == nil {
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			failed[i] = true
			c.logger.Warn("collection fetch failed", "collection", job.name, "error", err)
			if c.recorder != nil {
				c.recorder.FetchFailed(job.name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("fetch snapshot: %w", err)
	}

	for i, job := range jobs {
		if failed[i] {
			snap.Failed = append(snap.Failed, job.name)
		}
	}

	snap.Employees = nonNil(snap.Employees)
	snap.Clients = nonNil(snap.Clients)
	snap.Leads = nonNil(snap.Leads)
	snap.Projects = nonNil(snap.Projects)
	snap.FollowUps = nonNil(snap.FollowUps)
	snap.Tracking = nonNil(snap.Tracking)
	snap.Tasks = nonNil(snap.Tasks)
	snap.Assignments = adaptAssignments(wires)
	snap.CallLogs = NormalizeCallLogs(calls, snap.Employees)
	snap.FetchedAt = c.now()

	c.logger.Debug("snapshot fetched",
		"employees", len(snap.Employees),
		"leads", len(snap.Leads),
		"projects", len(snap.Projects),
		"assignments", len(snap.Assignments),
		"call_logs", len(snap.CallLogs),
		"failed", len(snap.Failed))

	return snap, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// WorkGiven lists the work handed to one employee.
func (c *Client) WorkGiven(ctx context.Context, employeeID string) ([]domain.WorkGiven, error) {
	query := url.Values{}
	query.Set("entity_type", "EMPLOYEE")
	query.Set("entity_id", employeeID)

	items, err := fetchPage[domain.WorkGiven](ctx, c, "work-given/", query)
	if err != nil {
		return nil, fmt.Errorf("fetch work given for employee %s: %w", employeeID, err)
	}
	return items, nil
}

// TrackingSummary overlays the backend's KPI values on the defaults. Keys
// that are missing or null keep the default. On error the defaults are
// returned together with the error.
func (c *Client) TrackingSummary(ctx context.Context) (domain.TrackingSummary, error) {
	summary := domain.DefaultTrackingSummary()

	body, err := c.get(ctx, "dashboard/", nil)
	if err != nil {
		return summary, fmt.Errorf("fetch tracking summary: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return summary, nil
	}

	targets := map[string]any{
		"total_revenue":         &summary.TotalRevenue,
		"total_revenue_percent": &summary.TotalRevenuePercent,
		"employees_active":      &summary.EmployeesActive,
		"employees_pending":     &summary.EmployeesPending,
		"receivables":           &summary.Receivables,
		"receivables_note":      &summary.ReceivablesNote,
		"cash_balance":          &summary.CashBalance,
		"cash_note":             &summary.CashNote,
	}
	for key, target := range targets {
		raw, ok := fields[key]
		if !ok || string(raw) == "null" {
			continue
		}
		_ = json.Unmarshal(raw, target)
	}

	return summary, nil
}
