package weather

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/namefreezers/city-weather-charts/internal/config"
	"github.com/namefreezers/city-weather-charts/internal/weather/openweathermap"
)

// BuildProvider constructs the Provider used by every command:
// 1) the OpenWeatherMap client on top of httpClient
// 2) a Redis cache decorator when REDIS_ADDR is set
// The returned cleanup func closes whatever was opened.
func BuildProvider(ctx context.Context, cfg *config.Config, httpClient openweathermap.HTTPClient, logger *zap.Logger) (Provider, func(), error) {
	owm, err := openweathermap.NewClient(cfg, httpClient, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Redis.Addr == "" {
		logger.Debug("redis cache disabled")
		return owm, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}
	logger.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	return NewCachingProvider(owm, rdb, cfg.Redis.TTL, logger), cleanup, nil
}
