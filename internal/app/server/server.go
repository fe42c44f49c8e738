package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/dashboard"
	"ems/internal/domain/leave"
	"ems/internal/domain/tasks"
	"ems/internal/domain/tickets"
	"ems/internal/platform/config"
	"ems/internal/platform/db"
	"ems/internal/platform/jobs"
	"ems/internal/platform/metrics"
	"ems/internal/transport/http/api"
	audithandler "ems/internal/transport/http/handlers/audit"
	authhandler "ems/internal/transport/http/handlers/auth"
	dashboardhandler "ems/internal/transport/http/handlers/dashboard"
	leavehandler "ems/internal/transport/http/handlers/leave"
	navigationhandler "ems/internal/transport/http/handlers/navigation"
	taskshandler "ems/internal/transport/http/handlers/tasks"
	ticketshandler "ems/internal/transport/http/handlers/tickets"
	"ems/internal/transport/http/middleware"
)

// devSecret signs tokens outside production when JWT_SECRET is unset.
const devSecret = "ems-development-secret"

type App struct {
	Config  config.Config
	Stores  *Stores
	Auth    *auth.Service
	Audit   *audit.Service
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler
}

// New opens the configured backends, applies migrations and demo data when
// enabled, and assembles the router. Callers must Close the App.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set; using development secret")
		cfg.JWTSecret = devSecret
	}

	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if stores.Pool != nil && cfg.RunMigrations {
		if err := db.Migrate(ctx, stores.Pool); err != nil {
			stores.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}

	authService := auth.NewService(stores.Users, stores.Sessions, auth.Options{
		Secret:         cfg.JWTSecret,
		TTL:            cfg.SessionTTL,
		AllowOpenLogin: cfg.AllowOpenLogin,
	})
	taskService := tasks.NewService(stores.Tasks)
	leaveService := leave.NewService(stores.Leaves, float64(cfg.LeaveAnnualAllowance))
	ticketService := tickets.NewService(stores.Tickets)

	if cfg.RunSeed {
		if _, err := db.Seed(ctx, db.SeedTargets{
			Users:   authService,
			Tasks:   stores.Tasks,
			Leaves:  stores.Leaves,
			Tickets: stores.Tickets,
		}, cfg.SeedDemoPassword); err != nil {
			stores.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	app := &App{
		Config:  cfg,
		Stores:  stores,
		Auth:    authService,
		Audit:   audit.New(stores.Audit),
		Jobs:    jobs.New(),
		Metrics: metrics.New(),
	}
	if err := app.Jobs.Schedule(cfg.SessionPurgeSchedule, jobs.JobSessionPurge, app.purgeSessions); err != nil {
		stores.Close()
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		router.Use(chimw.RealIP)
	}
	router.Use(middleware.Auth(authService))
	router.Use(middleware.Logger(app.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := stores.Ping(ctx); err != nil {
			slog.Warn("readiness check failed", "err", err)
			http.Error(w, "storage not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireRole(auth.RoleAdmin)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			snapshot := app.Metrics.Snapshot()
			snapshot["jobs"] = app.Jobs.History()
			api.Success(w, snapshot, middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute*5, time.Minute))
		r.Use(middleware.Idempotency(idempotencyStore(stores)))

		authhandler.NewHandler(authService, app.Metrics, app.Audit, cfg.CookieSecure).RegisterRoutes(r)
		navigationhandler.NewHandler().RegisterRoutes(r)
		taskshandler.NewHandler(taskService).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService, app.Audit).RegisterRoutes(r)
		ticketshandler.NewHandler(ticketService, app.Audit).RegisterRoutes(r)
		audithandler.NewHandler(app.Audit).RegisterRoutes(r)
		dashboardhandler.NewHandler(dashboard.NewService(taskService, leaveService, ticketService, authService)).RegisterRoutes(r)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			api.Fail(w, http.StatusNotFound, "not_found", "no such endpoint", middleware.GetRequestID(r.Context()))
		})
	})

	router.Mount("/", navigationhandler.PageGuard(spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"}))

	app.Router = router
	return app, nil
}

func idempotencyStore(stores *Stores) middleware.IdempotencyStore {
	if stores.Redis != nil {
		return middleware.NewRedisIdempotencyStore(stores.Redis)
	}
	return middleware.NewMemoryIdempotencyStore()
}

func (a *App) purgeSessions(ctx context.Context) (any, error) {
	n, err := a.Auth.PurgeExpired(ctx)
	if err != nil {
		return nil, err
	}
	a.Metrics.RecordPurge(n)
	return map[string]int64{"purged": n}, nil
}

func (a *App) Close() {
	a.Stores.Close()
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg config.Config) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	jobCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	app.Jobs.Start(jobCtx)
	if _, err := app.Jobs.RunNow(ctx, jobs.JobSessionPurge, app.purgeSessions); err != nil {
		slog.Warn("startup session purge failed", "err", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("EMS server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	slog.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+strings.TrimPrefix(r.URL.Path, "/")))
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if err == nil || os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
