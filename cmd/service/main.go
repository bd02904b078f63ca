// cmd/service/main.go
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

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"devwell-dashboard/internal/api"
	"devwell-dashboard/internal/auth"
	"devwell-dashboard/internal/config"
	"devwell-dashboard/internal/github"
	"devwell-dashboard/internal/store"
	"devwell-dashboard/internal/syncer"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize database connection and run migrations
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()
	logger.Info("Database connection established")

	if err := runMigrations(cfg.DBURL); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")

	// 5. Initialize application components
	hub := auth.NewHub()
	parser := auth.NewParser(cfg.SessionSecret)

	sleepStore := store.NewSleepStore(dbpool, logger, cfg.CacheTTL)
	commitStore := store.NewCommitStore(dbpool, logger, cfg.CacheTTL)
	insightStore := store.NewInsightStore(dbpool, logger, cfg.CacheTTL)
	profileStore := store.NewProfileStore(dbpool, logger, cfg.CacheTTL)

	newSource := func(userID string) syncer.ActivitySource {
		client := github.NewClient(hub.Provider(userID), logger)
		if cfg.GithubAPIURL != "" {
			client = client.WithBaseURL(cfg.GithubAPIURL)
		}
		return client
	}
	appSyncer := syncer.NewSyncer(commitStore, profileStore, newSource, hub, logger, cfg.SyncLookback, cfg.SyncInterval)

	router := api.NewRouter(api.RouterConfig{
		Sleep:       sleepStore,
		Commits:     commitStore,
		Insights:    insightStore,
		Profiles:    profileStore,
		Sync:        appSyncer,
		Parser:      parser,
		Hub:         hub,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	// 6. Start the syncer in a separate goroutine
	go appSyncer.Run(ctx)

	// 7. Serve until shutdown signal
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received. Exiting.")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	return nil
}

func runMigrations(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
