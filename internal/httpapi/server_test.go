package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"CRMDashboard/internal/domain"
	"CRMDashboard/internal/logging"
	"CRMDashboard/internal/metrics"
	"CRMDashboard/internal/usecase"
)

const snapshotJSON = `{
	"employees": [{"id": 7, "name": "Asha"}, {"id": 8, "name": "Ben"}],
	"clients": [{"id": 1, "name": "Umbrella", "assigned": 7}, {"id": 2, "name": "Hooli", "assigned": null}],
	"leads": [{"id": 1, "name": "Alpha", "status": "new"}, {"id": 2, "name": "Beta", "status": "qualified"}],
	"projects": [{"id": 10, "title": "Portal", "progress": 50}],
	"assignments": [],
	"call_logs": [{"id": 1, "name": "Acme", "outcome": "busy", "raw": {"outcome": "busy"}}],
	"follow_ups": [],
	"tracking": [],
	"tasks": [
		{"id": 1, "title": "Audit", "owner": "Asha", "progress": 100, "status": "COMPLETED"},
		{"id": 2, "title": "Deploy", "owner": "Ben", "progress": 20, "status": "IN_PROGRESS"}
	],
	"fetched_at": "2025-11-10T09:00:00Z"
}`

type fakeSource struct {
	snap domain.Snapshot
	err  error
}

func (f *fakeSource) FetchSnapshot(context.Context) (domain.Snapshot, error) {
	return f.snap, f.err
}

func (f *fakeSource) WorkGiven(_ context.Context, employeeID string) ([]domain.WorkGiven, error) {
	return []domain.WorkGiven{{Title: domain.Text("Audit for " + employeeID), Priority: "HIGH"}}, nil
}

func (f *fakeSource) TrackingSummary(context.Context) (domain.TrackingSummary, error) {
	return domain.DefaultTrackingSummary(), nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newTestServer(t *testing.T, source *fakeSource) (*Server, *metrics.Metrics) {
	t.Helper()
	if source == nil {
		source = &fakeSource{}
		require.NoError(t, json.Unmarshal([]byte(snapshotJSON), &source.snap))
	}

	dashboard, err := usecase.NewDashboard(usecase.DashboardDeps{Source: source, Logger: logging.Discard()})
	require.NoError(t, err)

	m := metrics.New()
	return New(dashboard, Options{Metrics: m, Logger: logging.Discard()}), m
}

func do(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetDashboard(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/api/v1/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Cards []struct {
			Key    string         `json:"key"`
			Count  int            `json:"count"`
			Status map[string]int `json:"status"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Cards, 8)

	assert.Equal(t, "employees", view.Cards[0].Key)
	assert.Equal(t, map[string]int{"red": 0, "yellow": 0, "green": 2}, view.Cards[0].Status)
	assert.Equal(t, "leads", view.Cards[1].Key)
	assert.Equal(t, map[string]int{"red": 1, "yellow": 1, "green": 0}, view.Cards[1].Status)
}

func TestRefreshReportsBackendFailure(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeSource{err: errors.New("connection refused")})
	rec := do(t, srv, http.MethodPost, "/api/v1/dashboard/refresh")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeError(t, rec).Error)
}

func TestGetDrilldown(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/api/v1/dashboard/leads/RED")
	require.Equal(t, http.StatusOK, rec.Code)

	var dd struct {
		Metric string            `json:"metric"`
		Color  string            `json:"color"`
		Title  string            `json:"title"`
		Items  []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dd))
	assert.Equal(t, "leads", dd.Metric)
	assert.Equal(t, "red", dd.Color)
	assert.Equal(t, "Leads — Not started / Inactive", dd.Title)
	require.Len(t, dd.Items, 1)
	assert.JSONEq(t, `"Lead #1 — Alpha (new)"`, string(dd.Items[0]))
}

func TestDrilldownEmployeeEntriesAreTagged(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/api/v1/dashboard/employees/green")
	require.Equal(t, http.StatusOK, rec.Code)

	var dd struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dd))
	require.Len(t, dd.Items, 2)
	assert.Equal(t, "employee", dd.Items[0]["type"])
	assert.Equal(t, "Asha", dd.Items[0]["name"])
}

func TestDrilldownRejectsBadInput(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/dashboard/leads/purple")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Error)

	rec = do(t, srv, http.MethodGet, "/api/v1/dashboard/invoices/red")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error)

	rec = do(t, srv, http.MethodGet, "/api/v1/dashboard/leads/red/export?format=pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportDrilldownCSV(t *testing.T) {
	t.Parallel()

	srv, m := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/api/v1/dashboard/leads/yellow/export")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="leads-yellow.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Metric,Status,Entry", lines[0])
	assert.Equal(t, "leads,In progress,Lead #2 — Beta (qualified)", lines[1])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsCreated.WithLabelValues("csv")))
}

func TestExportTasksXLSX(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/api/v1/tasks/export?filter=completed&format=XLSX")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tasks_export.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Audit", rows[1][0])
	assert.Equal(t, "Completed", rows[1][5])
}

func TestDrilldownPageLinksEmployees(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/dashboard/employees/green")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, "Employees — Completed", doc.Find("h1").Text())
	links := doc.Find("ul.entries a.employee")
	require.Equal(t, 2, links.Length())
	href, _ := links.First().Attr("href")
	assert.Equal(t, "/api/v1/employees/7/work", href)
	assert.Equal(t, "Employee #7 — Asha", links.First().Text())

	csv, _ := doc.Find("nav.export a").First().Attr("href")
	assert.Equal(t, "/api/v1/dashboard/employees/green/export?format=csv", csv)
}

func TestDrilldownPageEmptyBucket(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/dashboard/projects/green")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("ul.entries li").Length())
	assert.Equal(t, "No items.", doc.Find("p.empty").Text())
}

func TestCallLogSummaryAndTasks(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/calllogs/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":1,"missed":1,"answered":0,"follow_ups":0}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/v1/tasks?filter=InProgress")
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks struct {
		Filter string `json:"filter"`
		Items  []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	assert.Equal(t, "InProgress", tasks.Filter)
	require.Len(t, tasks.Items, 1)
	assert.Equal(t, "Deploy", tasks.Items[0].Title)
}

func TestWorkHistory(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/api/v1/employees/7/work")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Employee string `json:"employee"`
		Items    []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "7", body.Employee)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Audit for 7", body.Items[0].Title)
}

func TestHistoryWithoutStorage(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/history/leads?limit=10")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "history_disabled", decodeError(t, rec).Error)

	rec = do(t, srv, http.MethodGet, "/api/v1/history/leads?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/v1/history/leads?limit=5000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsightsAndTrackingSummary(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/v1/insights")
	require.Equal(t, http.StatusOK, rec.Code)
	var insights usecase.Insights
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &insights))
	assert.Equal(t, "local", insights.Source)
	assert.Contains(t, insights.Highlights, "Leads are converting at ~0% (0 of 2).")

	rec = do(t, srv, http.MethodGet, "/api/v1/tracking/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "₹ 8.9 L", summary["total_revenue"])
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	t.Parallel()

	srv, m := newTestServer(t, nil)
	do(t, srv, http.MethodGet, "/health")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")))

	rec := do(t, srv, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
