package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/shopspring/decimal"

	"outlethr/internal/domain/payroll"
	"outlethr/internal/platform/config"
	"outlethr/internal/platform/db"
	"outlethr/internal/platform/jobs"
	"outlethr/internal/platform/metrics"
	"outlethr/internal/transport/http/api"
	payrollhandler "outlethr/internal/transport/http/handlers/payroll"
	"outlethr/internal/transport/http/middleware"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the router needs. Runs may be nil to disable the
// payroll run endpoints.
type Deps struct {
	Config  config.Config
	Logger  *slog.Logger
	DB      Pinger
	Metrics *metrics.Collector
	Payroll payrollhandler.Computer
	Runs    payrollhandler.RunQueue
}

func newLogger(cfg config.Config) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(cfg.Environment != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "outlethr"),
		slog.String("env", cfg.Environment),
	)
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.SlogLevel(),
		Schema: httplog.SchemaECS,
	}))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB == nil {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := deps.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
		router.Method(http.MethodGet, "/metrics/prometheus", deps.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			proxies, err := cfg.TrustedProxyPrefixes()
			if err != nil {
				logger.Warn("ignoring trusted proxies", "err", err)
			}
			trusted := middleware.WithTrustedProxies(proxies)
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, trusted))
			r.Use(middleware.ComputeRateLimit(cfg.RateLimitPerMinute, time.Minute, trusted))
		}
		payrollHandler := payrollhandler.NewHandler(deps.Payroll, deps.Runs, cfg.Payroll)
		payrollHandler.RegisterRoutes(r)
	})

	return router
}

func Run() {
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool); err != nil {
			slog.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	collector := metrics.New()
	payrollService := payroll.NewService(payroll.NewStore(pool), collector)
	runs := jobs.New(jobs.NewStore(pool), cfg.JobQueueSize)
	runs.Start(ctx)

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: NewRouter(Deps{
			Config:  cfg,
			Logger:  logger,
			DB:      pool,
			Metrics: collector,
			Payroll: payrollService,
			Runs:    runs,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", "err", err)
	}
	slog.Info("server stopped")
}
