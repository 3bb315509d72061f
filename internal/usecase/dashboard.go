package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"CRMDashboard/internal/board"
	"CRMDashboard/internal/domain"
	"CRMDashboard/internal/logging"
	"CRMDashboard/internal/ports"
)

var (
	ErrNoSource         = errors.New("crm source is not configured")
	ErrHistoryDisabled  = errors.New("history storage is not configured")
	ErrEmployeeRequired = errors.New("employee id is required")
)

// DashboardDeps wires all driven adapters into the dashboard service.
// Only Source is required.
type DashboardDeps struct {
	Source   ports.CRMSource
	Cache    ports.SnapshotCache
	History  ports.HistoryRepository
	Notifier ports.Notifier
	Insights ports.InsightsClient
	Recorder ports.Recorder
	Registry *board.Registry
	// Metrics selects and orders the cards; empty means all.
	Metrics []string
	// Digest publishes a summary through Notifier after every refresh.
	Digest bool
	// HistoryLimit caps History when the caller passes no limit.
	HistoryLimit int
	Logger       *slog.Logger
}

// Dashboard fetches, caches and classifies CRM collections.
type Dashboard struct {
	source   ports.CRMSource
	cache    ports.SnapshotCache
	history  ports.HistoryRepository
	notifier ports.Notifier
	insights ports.InsightsClient
	recorder ports.Recorder
	registry *board.Registry
	metrics  []string
	digest   bool
	limit    int
	logger   *slog.Logger
	now      func() time.Time

	refreshMu sync.Mutex
}

// View is the card grid of one snapshot.
type View struct {
	Cards     []board.Card `json:"cards"`
	Failed    []string     `json:"failed,omitempty"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Insights is the quick-insights panel.
type Insights struct {
	Summary    string    `json:"summary"`
	Highlights []string  `json:"highlights"`
	Source     string    `json:"source"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// NewDashboard constructs the service and validates the card selection.
func NewDashboard(deps DashboardDeps) (*Dashboard, error) {
	if deps.Source == nil {
		return nil, ErrNoSource
	}
	registry := deps.Registry
	if registry == nil {
		registry = board.DefaultRegistry()
	}
	for _, key := range deps.Metrics {
		if _, err := registry.Resolve(key); err != nil {
			return nil, fmt.Errorf("dashboard metrics: %w", err)
		}
	}

	return &Dashboard{
		source:   deps.Source,
		cache:    deps.Cache,
		history:  deps.History,
		notifier: deps.Notifier,
		insights: deps.Insights,
		recorder: deps.Recorder,
		registry: registry,
		metrics:  deps.Metrics,
		digest:   deps.Digest,
		limit:    deps.HistoryLimit,
		logger:   logging.Component(deps.Logger, "dashboard"),
		now:      time.Now,
	}, nil
}

// Registry exposes the metric registry used for classification.
func (d *Dashboard) Registry() *board.Registry {
	return d.registry
}

// Refresh fetches a new snapshot, caches it, records its counts and
// publishes the digest. Storage and notification failures are logged, not
// returned.
func (d *Dashboard) Refresh(ctx context.Context) (View, error) {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	snap, err := d.refresh(ctx)
	if err != nil {
		return View{}, err
	}
	return d.view(snap)
}

func (d *Dashboard) refresh(ctx context.Context) (domain.Snapshot, error) {
	start := d.now()

	snap, err := d.source.FetchSnapshot(ctx)
	if err != nil {
		d.observeRefresh(start, err)
		return domain.Snapshot{}, fmt.Errorf("fetch snapshot: %w", err)
	}

	if d.cache != nil {
		if err := d.cache.Store(ctx, snap); err != nil {
			d.logger.Warn("cache store failed", "error", err)
		}
	}

	cards, err := d.registry.Assemble(snap, d.metrics)
	if err != nil {
		d.observeRefresh(start, err)
		return domain.Snapshot{}, fmt.Errorf("assemble cards: %w", err)
	}
	counts := bucketCounts(cards, snap.FetchedAt)

	if d.recorder != nil {
		d.recorder.ObserveCounts(counts)
	}
	if d.history != nil {
		if err := d.history.SaveCounts(ctx, counts); err != nil {
			d.logger.Warn("history save failed", "error", err)
		}
	}
	if d.digest && d.notifier != nil {
		if err := d.notifier.PublishDigest(ctx, buildDigestMessage(cards, snap)); err != nil {
			d.logger.Warn("digest publish failed", "error", err)
		}
	}

	d.observeRefresh(start, nil)
	d.logger.Info("dashboard refreshed", "cards", len(cards), "failed", strings.Join(snap.Failed, ","),
		"elapsed", d.now().Sub(start).String())
	return snap, nil
}

func (d *Dashboard) observeRefresh(start time.Time, err error) {
	if d.recorder != nil {
		d.recorder.ObserveRefresh(d.now().Sub(start), err)
	}
}

// snapshot serves the cached snapshot, refreshing once on a miss.
func (d *Dashboard) snapshot(ctx context.Context) (domain.Snapshot, error) {
	if snap, ok := d.cached(ctx); ok {
		return snap, nil
	}

	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	if snap, ok := d.cached(ctx); ok {
		return snap, nil
	}
	return d.refresh(ctx)
}

func (d *Dashboard) cached(ctx context.Context) (domain.Snapshot, bool) {
	if d.cache == nil {
		return domain.Snapshot{}, false
	}
	snap, ok, err := d.cache.Load(ctx)
	if err != nil {
		d.logger.Warn("cache load failed", "error", err)
		return domain.Snapshot{}, false
	}
	return snap, ok
}

func (d *Dashboard) view(snap domain.Snapshot) (View, error) {
	cards, err := d.registry.Assemble(snap, d.metrics)
	if err != nil {
		return View{}, fmt.Errorf("assemble cards: %w", err)
	}
	return View{Cards: cards, Failed: snap.Failed, FetchedAt: snap.FetchedAt}, nil
}

// Dashboard classifies the current snapshot into cards.
func (d *Dashboard) Dashboard(ctx context.Context) (View, error) {
	snap, err := d.snapshot(ctx)
	if err != nil {
		return View{}, err
	}
	return d.view(snap)
}

// Drilldown formats one bucket of one card.
func (d *Dashboard) Drilldown(ctx context.Context, key string, color board.Color) (board.Drilldown, error) {
	if _, err := d.registry.Resolve(key); err != nil {
		return board.Drilldown{}, err
	}
	snap, err := d.snapshot(ctx)
	if err != nil {
		return board.Drilldown{}, err
	}
	return d.registry.Drilldown(snap, key, color)
}

// CallLogSummary returns the exclusive call counters.
func (d *Dashboard) CallLogSummary(ctx context.Context) (board.CallLogSummary, error) {
	snap, err := d.snapshot(ctx)
	if err != nil {
		return board.CallLogSummary{}, err
	}
	return board.SummarizeCallLogs(snap.CallLogs), nil
}

// Tasks filters the tracking page task list.
func (d *Dashboard) Tasks(ctx context.Context, filter board.TaskFilter) ([]domain.Task, error) {
	snap, err := d.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return board.FilterTasks(snap.Tasks, filter), nil
}

// TrackingSummary returns the KPI tiles; backend errors fall back to defaults.
func (d *Dashboard) TrackingSummary(ctx context.Context) domain.TrackingSummary {
	summary, err := d.source.TrackingSummary(ctx)
	if err != nil {
		d.logger.Warn("tracking summary unavailable, using defaults", "error", err)
	}
	return summary
}

// WorkHistory lists the work given to one employee. It always hits the
// backend.
func (d *Dashboard) WorkHistory(ctx context.Context, employeeID string) ([]domain.WorkGiven, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, ErrEmployeeRequired
	}
	work, err := d.source.WorkGiven(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("work history: %w", err)
	}
	return work, nil
}

// History returns recorded counts of one card, newest first.
func (d *Dashboard) History(ctx context.Context, key string, limit int) ([]domain.BucketCount, error) {
	if d.history == nil {
		return nil, ErrHistoryDisabled
	}
	if _, err := d.registry.Resolve(key); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = d.limit
	}
	rows, err := d.history.History(ctx, key, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return rows, nil
}

// Insights summarizes the current snapshot. Highlights are computed
// locally; the summary comes from the insights client when one is wired
// and answers, and from the highlights otherwise.
func (d *Dashboard) Insights(ctx context.Context) (Insights, error) {
	snap, err := d.snapshot(ctx)
	if err != nil {
		return Insights{}, err
	}
	cards, err := d.registry.Assemble(snap, nil)
	if err != nil {
		return Insights{}, fmt.Errorf("assemble cards: %w", err)
	}

	calls := board.SummarizeCallLogs(snap.CallLogs)
	result := Insights{
		Highlights: buildHighlights(cards, calls),
		Source:     "local",
		FetchedAt:  snap.FetchedAt,
	}
	result.Summary = strings.Join(result.Highlights, " ")

	if d.insights == nil {
		return result, nil
	}

	payload, err := buildDigestJSON(cards, calls)
	if err != nil {
		return Insights{}, fmt.Errorf("build insights payload: %w", err)
	}
	summary, err := d.insights.Insights(ctx, payload)
	if err != nil {
		d.logger.Warn("insights client failed, using local summary", "error", err)
		return result, nil
	}
	result.Summary = summary
	result.Source = "chatgpt"
	return result, nil
}

func bucketCounts(cards []board.Card, at time.Time) []domain.BucketCount {
	out := make([]domain.BucketCount, 0, len(cards))
	for _, c := range cards {
		out = append(out, domain.BucketCount{
			Metric:  c.Key,
			Red:     c.Status.Red,
			Yellow:  c.Status.Yellow,
			Green:   c.Status.Green,
			Total:   c.Count,
			TakenAt: at,
		})
	}
	return out
}

func buildDigestMessage(cards []board.Card, snap domain.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*CRM dashboard* %s\n", snap.FetchedAt.Format("2006-01-02 15:04"))
	for _, c := range cards {
		fmt.Fprintf(&b, "*%s*: %d total, red %d, yellow %d, green %d\n",
			c.Title, c.Count, c.Status.Red, c.Status.Yellow, c.Status.Green)
	}
	if len(snap.Failed) > 0 {
		fmt.Fprintf(&b, "_Unavailable: %s_\n", strings.Join(snap.Failed, ", "))
	}
	return b.String()
}

func buildDigestJSON(cards []board.Card, calls board.CallLogSummary) ([]byte, error) {
	type item struct {
		Metric string `json:"metric"`
		Title  string `json:"title"`
		Total  int    `json:"total"`
		Red    int    `json:"red"`
		Yellow int    `json:"yellow"`
		Green  int    `json:"green"`
	}

	payload := struct {
		Cards []item               `json:"cards"`
		Calls board.CallLogSummary `json:"calls"`
	}{Cards: make([]item, 0, len(cards)), Calls: calls}
	for _, c := range cards {
		payload.Cards = append(payload.Cards, item{
			Metric: c.Key,
			Title:  c.Title,
			Total:  c.Count,
			Red:    c.Status.Red,
			Yellow: c.Status.Yellow,
			Green:  c.Status.Green,
		})
	}

	return json.Marshal(payload)
}

func buildHighlights(cards []board.Card, calls board.CallLogSummary) []string {
	byKey := make(map[string]board.Card, len(cards))
	for _, c := range cards {
		byKey[c.Key] = c
	}

	var out []string
	if leads, ok := byKey["leads"]; ok && leads.Count > 0 {
		out = append(out, fmt.Sprintf("Leads are converting at ~%d%% (%d of %d).",
			percent(leads.Status.Green, leads.Count), leads.Status.Green, leads.Count))
	}
	if projects, ok := byKey["projects"]; ok && projects.Count > 0 {
		out = append(out, fmt.Sprintf("%d of %d projects are completed, %d not started.",
			projects.Status.Green, projects.Count, projects.Status.Red))
	}
	if clients, ok := byKey["clients"]; ok && clients.Status.Red > 0 {
		out = append(out, fmt.Sprintf("%d clients have nobody assigned.", clients.Status.Red))
	}
	if calls.Total > 0 {
		out = append(out, fmt.Sprintf("%d of %d calls were missed; %d need a follow up.",
			calls.Missed, calls.Total, calls.FollowUps))
	}
	if len(out) == 0 {
		out = append(out, "No CRM activity yet.")
	}
	return out
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
