package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/namefreezers/city-weather-charts/internal/config"
	"github.com/namefreezers/city-weather-charts/internal/httpclient"
	"github.com/namefreezers/city-weather-charts/internal/logging"
	"github.com/namefreezers/city-weather-charts/internal/prompt"
	"github.com/namefreezers/city-weather-charts/internal/repository"
	"github.com/namefreezers/city-weather-charts/internal/services"
	"github.com/namefreezers/city-weather-charts/internal/weather"
)

func main() {
	// 1) Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatalf("configuration error: DATABASE_URL is required by the scheduler")
	}
	locs := prompt.ParseLocations(cfg.Scheduler.Cities)
	if len(locs) == 0 {
		log.Fatalf("configuration error: SCHEDULE_CITIES must name at least one city")
	}

	// 2) Init logger
	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3) Open DB and make sure the table exists
	db, err := repository.OpenDB(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repo := repository.NewObservationRepository(db, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to prepare database schema", zap.Error(err))
	}

	// 4) Wire up weather provider and observation service
	httpClient := httpclient.New(cfg.RequestTimeout, logger, nil)
	provider, cleanup, err := weather.BuildProvider(ctx, cfg, httpClient, logger)
	if err != nil {
		logger.Fatal("failed to initialize weather provider", zap.Error(err))
	}
	defer cleanup()

	svc := services.NewObservationService(provider, repo, nil, logger)

	// 5) Build cron (standard 5-field, minute resolution); a slow run is skipped, not overlapped
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err = c.AddFunc(cfg.Scheduler.Spec, func() {
		runID, stored, err := svc.Record(ctx, locs)
		switch {
		case errors.Is(err, services.ErrNothingRecorded):
			logger.Warn("no observation recorded", zap.String("run_id", runID.String()))
		case err != nil:
			logger.Error("recording run failed",
				zap.String("run_id", runID.String()), zap.Int("stored", stored), zap.Error(err))
		default:
			obs, err := svc.Run(ctx, runID)
			if err != nil {
				logger.Warn("cannot read back run", zap.String("run_id", runID.String()), zap.Error(err))
				return
			}
			for _, o := range obs {
				logger.Debug("observation stored",
					zap.String("run_id", runID.String()), zap.String("city", o.City), zap.Float64("temp", o.Temp))
			}
		}
	})
	if err != nil {
		logger.Fatal("unable to schedule cron job", zap.String("cronSpec", cfg.Scheduler.Spec), zap.Error(err))
	}

	logger.Info("starting scheduler",
		zap.String("cronSpec", cfg.Scheduler.Spec),
		zap.Int("cities", len(locs)),
	)
	c.Start()

	// 6) Block until a signal, then let the running job finish
	<-ctx.Done()
	logger.Info("shutdown signal received, waiting for running job")
	<-c.Stop().Done()
}
