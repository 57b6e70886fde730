package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/userdesk/internal/config"
	"github.com/msomdec/userdesk/internal/directory"
	"github.com/msomdec/userdesk/internal/handler"
	"github.com/msomdec/userdesk/internal/repository/sqlite"
	"github.com/msomdec/userdesk/internal/service"
	"github.com/spf13/pflag"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "path", cfg.DatabasePath)

	dir := directory.New(cfg.Directory.URL,
		directory.WithAPIKey(cfg.Directory.APIKey),
		directory.WithHTTPClient(&http.Client{Timeout: cfg.Directory.Timeout}),
	)
	cache := db.Cache()

	authService := service.NewAuthService(dir, cache, cfg.Auth.JWTSecret, cfg.Auth.BcryptCost)
	screens := service.NewScreens(cache, dir)
	// 5 login attempts per IP, refilling one every 12 seconds.
	limiter := service.NewTokenBucket(1.0/12, 5)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Auth:         authService,
		Screens:      screens,
		Limiter:      limiter,
		DB:           db.SqlDB,
		CookieSecure: cfg.Auth.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go service.RunJanitor(ctx, time.Minute,
		func() {
			if n := screens.Prune(service.SessionTTL); n > 0 {
				slog.Info("pruned idle browser sessions", "count", n)
			}
		},
		func() { limiter.Sweep(10 * time.Minute) },
	)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "directory", cfg.Directory.URL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
