package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/namefreezers/city-weather-charts/internal/config"
	"github.com/namefreezers/city-weather-charts/internal/handlers"
	"github.com/namefreezers/city-weather-charts/internal/httpclient"
	"github.com/namefreezers/city-weather-charts/internal/logging"
	"github.com/namefreezers/city-weather-charts/internal/metrics"
	"github.com/namefreezers/city-weather-charts/internal/repository"
	"github.com/namefreezers/city-weather-charts/internal/services"
	"github.com/namefreezers/city-weather-charts/internal/weather"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1) Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// 2) Initialize structured logger
	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3) Metrics and the instrumented HTTP client
	m := metrics.NewMetrics("city_weather")
	httpClient := httpclient.New(cfg.RequestTimeout, logger, m)

	// 4) Build the weather provider (with optional Redis cache)
	provider, cleanup, err := weather.BuildProvider(ctx, cfg, httpClient, logger)
	if err != nil {
		logger.Fatal("failed to initialize weather provider", zap.Error(err))
	}
	defer cleanup()

	// 5) Observation history when Postgres is configured
	var observations services.ObservationService
	if cfg.Database.URL != "" {
		db, err := repository.OpenDB(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		repo := repository.NewObservationRepository(db, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare database schema", zap.Error(err))
		}
		observations = services.NewObservationService(provider, repo, m.ObservationsRecorded, logger)
	} else {
		logger.Info("DATABASE_URL not set, /api/history disabled")
	}

	// 6) Set up Gin router and handlers
	gin.SetMode(gin.ReleaseMode)
	reports := services.NewReportService(provider, cfg, io.Discard, logger)
	router := handlers.NewRouter(reports, observations, m, logger)

	// 7) Start HTTP server and wait for a shutdown signal
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting API server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
