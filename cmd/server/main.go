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

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/link-catalog-backend/internal/app"
	"github.com/nekogravitycat/link-catalog-backend/internal/cache"
	"github.com/nekogravitycat/link-catalog-backend/internal/config"
	"github.com/nekogravitycat/link-catalog-backend/internal/db"
	"github.com/nekogravitycat/link-catalog-backend/internal/event"
	"github.com/nekogravitycat/link-catalog-backend/internal/logging"
	"github.com/nekogravitycat/link-catalog-backend/internal/telemetry"
)

const (
	serviceName    = "link-catalog-backend"
	serviceVersion = "1.0.0"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	slog.SetDefault(logger)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracer, err := telemetry.Init(serviceName, serviceVersion, cfg.OTelEnabled)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, int32(cfg.DBMaxConns))
	if err != nil {
		logger.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Optional list cache
	var listCache cache.ListCache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			logger.Warn("redis unavailable, list cache disabled", "error", err)
		} else {
			defer rc.Close()
			listCache = rc
		}
	}

	// Optional change events
	publisher := event.NewPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, logger)
	defer publisher.Close()

	container := app.NewContainer(app.Config{
		IsProduction:  cfg.IsProduction,
		ProdOrigins:   cfg.ProdOrigins,
		DBPool:        pool,
		JWTSecret:     cfg.JWTSecret,
		JWTTTL:        cfg.JWTAccessTokenTTL,
		Logger:        logger,
		ListCache:     listCache,
		Publisher:     publisher,
		ListMaxLimit:  cfg.ListMaxLimit,
		ExportMaxRows: cfg.ExportMaxRows,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		logger.Info("server running", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown failed", "error", err)
	}

	logger.Info("server exited gracefully")
}
