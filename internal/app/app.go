package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"

	"CRMDashboard/internal/config"
	"CRMDashboard/internal/httpapi"
	"CRMDashboard/internal/infrastructure/cache"
	"CRMDashboard/internal/infrastructure/crmapi"
	"CRMDashboard/internal/infrastructure/llm"
	"CRMDashboard/internal/infrastructure/scheduler"
	"CRMDashboard/internal/infrastructure/storage"
	"CRMDashboard/internal/infrastructure/telegram"
	"CRMDashboard/internal/logging"
	"CRMDashboard/internal/metrics"
	"CRMDashboard/internal/ports"
	"CRMDashboard/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	dashboard *usecase.Dashboard
	scheduler *usecase.Scheduler
	server    *httpapi.Server
	closers   []func() error
}

// New builds the application. Optional backends that cannot be reached are
// logged and left out; only an invalid CRM client or card selection fails.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: logging.Component(baseLogger, "app")}

	sentryEnabled := a.initSentry()
	recorder := metrics.New()

	source, err := crmapi.NewClient(cfg.API, baseLogger, recorder)
	if err != nil {
		return nil, fmt.Errorf("crm client: %w", err)
	}

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram); tg.Configured() {
		notifier = tg
	}

	var insights ports.InsightsClient
	if cfg.ChatGPT.APIKey != "" {
		insights = llm.NewChatGPTClient(cfg.ChatGPT)
	}

	dashboard, err := usecase.NewDashboard(usecase.DashboardDeps{
		Source:       source,
		Cache:        a.snapshotCache(ctx),
		History:      a.historyRepository(ctx),
		Notifier:     notifier,
		Insights:     insights,
		Recorder:     recorder,
		Metrics:      cfg.Dashboard.Metrics,
		Digest:       cfg.Dashboard.Digest,
		HistoryLimit: cfg.Dashboard.HistoryLimit,
		Logger:       baseLogger,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.dashboard = dashboard

	driver, err := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location(), true, baseLogger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.scheduler = usecase.NewScheduler(driver, dashboard, 2*cfg.API.Timeout, baseLogger)

	a.server = httpapi.New(dashboard, httpapi.Options{
		Addr:    cfg.Server.Addr,
		Metrics: recorder,
		Sentry:  sentryEnabled,
		Logger:  baseLogger,
	})
	return a, nil
}

func (a *Application) initSentry() bool {
	if a.cfg.Sentry.DSN == "" {
		a.logger.Info("sentry disabled (no DSN configured)")
		return false
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              a.cfg.Sentry.DSN,
		Environment:      a.cfg.Sentry.Environment,
		AttachStacktrace: true,
	})
	if err != nil {
		a.logger.Warn("sentry init failed", "error", err)
		return false
	}
	a.closers = append(a.closers, func() error {
		sentry.Flush(2 * time.Second)
		return nil
	})
	return true
}

// snapshotCache prefers Redis and falls back to process memory.
func (a *Application) snapshotCache(ctx context.Context) ports.SnapshotCache {
	if a.cfg.Redis.URL != "" {
		rc, err := cache.NewRedisSnapshotCache(ctx, a.cfg.Redis.URL, a.cfg.Redis.TTL)
		if err == nil {
			a.closers = append(a.closers, rc.Close)
			return rc
		}
		a.logger.Warn("redis unavailable, caching in memory", "error", err)
	}
	return cache.NewMemorySnapshotCache(a.cfg.Redis.TTL)
}

// historyRepository returns nil when no database is configured or reachable.
func (a *Application) historyRepository(ctx context.Context) ports.HistoryRepository {
	if a.cfg.Database.DSN == "" {
		return nil
	}
	db, err := storage.Open(ctx, a.cfg.Database.DSN)
	if err != nil {
		a.logger.Warn("history disabled", "error", err)
		return nil
	}
	repo := storage.NewPostgresHistory(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		a.logger.Warn("history disabled", "error", err)
		_ = db.Close()
		return nil
	}
	a.closers = append(a.closers, db.Close)
	return repo
}

// Run starts the scheduler and the HTTP server and blocks until ctx is
// cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.server.Start)
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
		a.logger.Info("application stopped")
		return errors.Join(errs...)
	})

	return g.Wait()
}

func (a *Application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
