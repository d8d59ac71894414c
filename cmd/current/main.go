package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/namefreezers/city-weather-charts/internal/cli"
	"github.com/namefreezers/city-weather-charts/internal/config"
	"github.com/namefreezers/city-weather-charts/internal/httpclient"
	"github.com/namefreezers/city-weather-charts/internal/logging"
	"github.com/namefreezers/city-weather-charts/internal/services"
	"github.com/namefreezers/city-weather-charts/internal/weather"
)

func main() {
	log.SetFlags(0)

	// 1) Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	// 2) Initialize console logger on stderr
	logger, err := logging.New(cfg.LogLevel, true)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer logger.Sync()

	// 3) Ctrl-C cancels the request or pause in flight
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4) Build the weather provider (OpenWeatherMap, optionally cached in Redis)
	httpClient := httpclient.New(cfg.RequestTimeout, logger, nil)
	provider, cleanup, err := weather.BuildProvider(ctx, cfg, httpClient, logger)
	if err != nil {
		logger.Fatal("failed to initialize weather provider", zap.Error(err))
	}
	defer cleanup()

	// 5) Run the interactive session
	reports := services.NewReportService(provider, cfg, os.Stdout, logger)
	err = cli.RunCurrentSession(ctx, os.Stdin, os.Stdout, reports.RunCurrent, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("session ended with error", zap.Error(err))
		cleanup()
		logger.Sync()
		os.Exit(1)
	}
}
