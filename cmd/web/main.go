package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/config"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/middleware"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/observability"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/server"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/services"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	csvLoadTimeout = 30 * time.Second
	cacheMaxAge    = "public, max-age=300"
)

// newDashboardHandler builds the page shell handler. The filter controls
// are generated from the loaded dataset, so this closes over analytics.
func newDashboardHandler(analytics *services.Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		view := templates.DashboardView{
			Overview:   analytics.Overview(),
			Years:      analytics.Years(),
			Categories: analytics.Categories(),
			Regions:    analytics.Regions(),
			Months:     services.MonthNames(),
		}

		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := templates.Dashboard(view).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	analytics := services.NewAnalytics()
	if cfg.Dataset.CacheDir != "" {
		analytics.EnableWarmCache(cfg.Dataset.CacheDir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	defer cancel()

	loadCtx, span := observability.StartSpan(ctx, "dataset.load")
	span.SetTag("csv_file", cfg.Dataset.CSVFile)
	if err := analytics.LoadFromCSV(loadCtx, cfg.Dataset.CSVFile); err != nil {
		span.SetError(err)
		span.Finish()
		logger.Error("failed to load sales data", "error", err)
		os.Exit(1)
	}
	span.Finish()
	logger.Info("sales data loaded", "duration", span.Elapsed())

	templateHandlers := &server.TemplateHandlers{
		Dashboard: newDashboardHandler(analytics),
	}

	srv := server.NewServer(analytics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("analytics", func(ctx context.Context) error {
		logger.Info("shutting down analytics service")
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
