package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"CRMDashboard/internal/domain"
	"CRMDashboard/internal/ports"
)

// Metrics holds all Prometheus collectors of the service.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Dashboard metrics
	BucketItems     *prometheus.GaugeVec
	FetchFailures   *prometheus.CounterVec
	RefreshDuration *prometheus.HistogramVec
	LastRefresh     prometheus.Gauge
	ExportsCreated  *prometheus.CounterVec
}

var _ ports.Recorder = (*Metrics)(nil)

// New registers every collector on a fresh registry, together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		BucketItems: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dashboard_bucket_items",
				Help: "Items per dashboard card and status color after the last refresh",
			},
			[]string{"metric", "color"},
		),
		FetchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_fetch_failures_total",
				Help: "CRM collections that could not be fetched",
			},
			[]string{"collection"},
		),
		RefreshDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_refresh_duration_seconds",
				Help:    "Duration of a full fetch and classify cycle",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"result"}, // ok, error
		),
		LastRefresh: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful refresh",
		}),
		ExportsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_exports_total",
				Help: "Drill-down and task exports served",
			},
			[]string{"format"},
		),
	}
}

// Gatherer exposes the registry for tests and custom handlers.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware creates an Echo middleware for Prometheus metrics.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			labels := []string{c.Request().Method, c.Path(), strconv.Itoa(status)}
			m.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
			m.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// ObserveCounts sets the bucket gauges of every card.
func (m *Metrics) ObserveCounts(counts []domain.BucketCount) {
	for _, c := range counts {
		m.BucketItems.WithLabelValues(c.Metric, "red").Set(float64(c.Red))
		m.BucketItems.WithLabelValues(c.Metric, "yellow").Set(float64(c.Yellow))
		m.BucketItems.WithLabelValues(c.Metric, "green").Set(float64(c.Green))
	}
}

// ObserveRefresh records one refresh cycle.
func (m *Metrics) ObserveRefresh(elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RefreshDuration.WithLabelValues(result).Observe(elapsed.Seconds())
	if err == nil {
		m.LastRefresh.SetToCurrentTime()
	}
}

// FetchFailed counts a collection that came back empty because of an error.
func (m *Metrics) FetchFailed(collection string) {
	m.FetchFailures.WithLabelValues(collection).Inc()
}

// RecordExport counts a served export.
func (m *Metrics) RecordExport(format string) {
	m.ExportsCreated.WithLabelValues(format).Inc()
}
