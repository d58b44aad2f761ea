// Package main is the entrypoint for the Kharcha API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ankitpatil/kharcha/internal/api"
	"github.com/ankitpatil/kharcha/internal/api/handler"
	mw "github.com/ankitpatil/kharcha/internal/api/middleware"
	"github.com/ankitpatil/kharcha/internal/api/response"
	"github.com/ankitpatil/kharcha/internal/auth"
	"github.com/ankitpatil/kharcha/internal/cache"
	"github.com/ankitpatil/kharcha/internal/config"
	"github.com/ankitpatil/kharcha/internal/metrics"
	"github.com/ankitpatil/kharcha/internal/store"
	"github.com/ankitpatil/kharcha/internal/tool"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "session_ttl", cfg.Session.TTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Register metrics
	metrics.Init()

	// 6. Create store, authenticator and tool dispatcher
	pgStore := store.NewPostgresStore(pool)

	authenticator := auth.NewAuthenticator(pgStore, cfg.Session, cfg.Auth)
	carrier := auth.NewCookieCarrier(authenticator.SessionTTL())

	toolSvc := tool.NewService(pgStore, redisCache)
	catalog, err := tool.NewCatalog(toolSvc)
	if err != nil {
		return fmt.Errorf("build tool catalog: %w", err)
	}
	dispatcher := tool.NewDispatcher(catalog)
	slog.Info("tool catalog ready", "tools", len(catalog.Names()))

	// 7. Build router with dependencies
	deps := api.Dependencies{
		Session: mw.NewSessionAuth(carrier, authenticator),

		HealthHandler: healthHandler(pgStore, redisCache),
		SignupHandler: handler.NewSignupHandler(authenticator),
		LoginHandler:  handler.NewLoginHandler(authenticator, carrier),
		LogoutHandler: handler.NewLogoutHandler(carrier),
		InvokeHandler: handler.NewInvokeHandler(dispatcher),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		if checks["database"] != "ok" || checks["cache"] != "ok" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded")
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
