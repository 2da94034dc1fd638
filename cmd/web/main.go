package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"soda-dashboard/internal/config"
	"soda-dashboard/internal/middleware"
	"soda-dashboard/internal/observability"
	"soda-dashboard/internal/server"
	"soda-dashboard/internal/services"
	"soda-dashboard/internal/ui/templates"
)

const (
	renderTimeout      = 10 * time.Second
	catalogLoadTimeout = 30 * time.Second
	cacheMaxAge        = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func main() {
	// Load .env file if it exists (local dev)
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

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

	catalog := services.NewCatalog(cfg.Metrics)
	ctx, cancel := context.WithTimeout(context.Background(), catalogLoadTimeout)
	defer cancel()

	start := time.Now()
	if err := catalog.LoadFromFile(ctx, cfg.Catalog.File); err != nil {
		logger.Error("failed to load product catalog", "error", err)
		os.Exit(1)
	}
	duration := time.Since(start)
	logger.Info("product catalog loaded successfully", "duration", duration)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(catalog, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
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

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down catalog service")
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
