// Package main initializes and starts the HydroPal API server, setting up
// configuration, logging, the database, repositories, services, handlers,
// and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	nethttp "net/http"

	"github.com/atinyakov/HydroPal/internal/auth"
	"github.com/atinyakov/HydroPal/internal/config"
	"github.com/atinyakov/HydroPal/internal/db"
	"github.com/atinyakov/HydroPal/internal/logger"
	"github.com/atinyakov/HydroPal/internal/repository"
	"github.com/atinyakov/HydroPal/internal/server/handler/http"
	"github.com/atinyakov/HydroPal/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, file and environment configuration.
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(2)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Error("server stopped", zap.Error(err))
		_ = zapLogger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("cannot init database: %w", err)
	}
	defer func() {
		if err := postgresDB.Close(); err != nil {
			zapLogger.Warn("failed to close database", zap.Error(err))
		}
	}()

	// Delete old entries when a retention period is configured.
	db.StartRetentionCleaner(ctx, postgresDB, cfg.CleanupInterval, cfg.Retention, zapLogger)

	// Initialize repositories for users and tracking entries.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	entryRepo := repository.NewPostgresEntryRepository(postgresDB)

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("cannot init token manager: %w", err)
	}

	// Initialize business-logic services.
	authService, err := service.NewAuthService(userRepo, tokens, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("cannot init auth service: %w", err)
	}
	entryService := service.NewEntryService(entryRepo)
	statsService := service.NewStatsService(entryRepo, loc)

	// Create HTTP handlers and build the router.
	responder := http.Responder{Log: zapLogger, Detail: !cfg.IsProduction()}
	router := http.NewRouter(http.Handlers{
		Auth:   &http.AuthHandler{AuthService: authService, Responder: responder},
		Data:   &http.DataHandler{EntryService: entryService, Responder: responder},
		Water:  &http.WaterHandler{WaterService: statsService, Responder: responder},
		Health: &http.HealthHandler{DB: postgresDB, Version: version},
	}, authService, http.RouterOptions{
		FrontendURL: cfg.FrontendURL,
		RateLimit:   cfg.RateLimit,
	}, zapLogger)

	server := &nethttp.Server{
		Addr:    cfg.Address,
		Handler: router,
	}
	if cfg.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server",
			zap.String("addr", cfg.Address),
			zap.Bool("tls", cfg.TLSEnabled()),
			zap.String("timezone", loc.String()),
		)
		if cfg.TLSEnabled() {
			serveErr <- server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
