package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"CRMDashboard/internal/board"
	"CRMDashboard/internal/domain"
	"CRMDashboard/internal/logging"
	"CRMDashboard/internal/metrics"
	"CRMDashboard/internal/usecase"
)

// DashboardService is what the handlers need from the dashboard use case.
type DashboardService interface {
	Dashboard(ctx context.Context) (usecase.View, error)
	Refresh(ctx context.Context) (usecase.View, error)
	Drilldown(ctx context.Context, key string, color board.Color) (board.Drilldown, error)
	CallLogSummary(ctx context.Context) (board.CallLogSummary, error)
	Tasks(ctx context.Context, filter board.TaskFilter) ([]domain.Task, error)
	WorkHistory(ctx context.Context, employeeID string) ([]domain.WorkGiven, error)
	History(ctx context.Context, key string, limit int) ([]domain.BucketCount, error)
	Insights(ctx context.Context) (usecase.Insights, error)
	TrackingSummary(ctx context.Context) domain.TrackingSummary
}

var _ DashboardService = (*usecase.Dashboard)(nil)

// Options configures the HTTP server. Zero values disable the optional
// middleware.
type Options struct {
	Addr    string
	Metrics *metrics.Metrics
	// Sentry installs the Sentry middleware; sentry.Init must already have run.
	Sentry bool
	Logger *slog.Logger
}

// Server exposes the dashboard over HTTP.
type Server struct {
	echo      *echo.Echo
	dashboard DashboardService
	metrics   *metrics.Metrics
	logger    *slog.Logger
	addr      string
}

// New builds the echo instance with middleware and routes.
func New(dashboard DashboardService, opts Options) *Server {
	logger := logging.Component(opts.Logger, "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Renderer = newTemplateRenderer()

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if opts.Sentry {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	if opts.Metrics != nil {
		e.Use(opts.Metrics.Middleware())
	}

	s := &Server{
		echo:      e,
		dashboard: dashboard,
		metrics:   opts.Metrics,
		logger:    logger,
		addr:      opts.Addr,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	e.GET("/dashboard/:metric/:color", s.drilldownPage)

	v1 := e.Group("/api/v1")
	v1.GET("/dashboard", s.getDashboard)
	v1.POST("/dashboard/refresh", s.refreshDashboard)
	v1.GET("/dashboard/:metric/:color", s.getDrilldown)
	v1.GET("/dashboard/:metric/:color/export", s.exportDrilldown)
	v1.GET("/calllogs/summary", s.getCallLogSummary)
	v1.GET("/employees/:id/work", s.getWorkHistory)
	v1.GET("/tasks", s.getTasks)
	v1.GET("/tasks/export", s.exportTasks)
	v1.GET("/history/:metric", s.getHistory)
	v1.GET("/insights", s.getInsights)
	v1.GET("/tracking/summary", s.getTrackingSummary)
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}
