package weather

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/namefreezers/city-weather-charts/internal/weather/types"
)

// CachingProvider decorates another Provider with a Redis cache.
// Redis failures are logged and treated as a cache miss.
type CachingProvider struct {
	inner  Provider
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingProvider returns a Provider that first looks in Redis,
// falling back to inner (e.g. an openweathermap.Client) on cache-miss.
func NewCachingProvider(inner Provider, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachingProvider {
	return &CachingProvider{inner: inner, redis: rdb, ttl: ttl, logger: logger}
}

func (c *CachingProvider) Geocode(ctx context.Context, loc types.Location) (types.CityInfo, error) {
	key := "geo:" + strings.ToLower(loc.Query())

	if raw, ok := c.lookup(ctx, key); ok {
		var info types.CityInfo
		if err := json.Unmarshal(raw, &info); err == nil {
			return info, nil
		} else {
			c.logger.Warn("cache unmarshal failed", zap.String("key", key), zap.Error(err))
		}
	}

	info, err := c.inner.Geocode(ctx, loc)
	if err != nil {
		return info, err
	}

	if blob, err := json.Marshal(info); err != nil {
		c.logger.Warn("json marshal failed", zap.Error(err))
	} else {
		c.store(ctx, key, blob)
	}
	return info, nil
}

func (c *CachingProvider) FetchCurrent(ctx context.Context, city types.CityInfo) (types.CurrentWeather, error) {
	key := "weather:" + coordKey(city)

	if raw, ok := c.lookup(ctx, key); ok {
		if w, err := types.DecodeCurrent(raw); err == nil {
			return w, nil
		} else {
			c.logger.Warn("cache unmarshal failed", zap.String("key", key), zap.Error(err))
		}
	}

	w, err := c.inner.FetchCurrent(ctx, city)
	if err != nil {
		return w, err
	}
	c.store(ctx, key, w.Raw)
	return w, nil
}

func (c *CachingProvider) FetchForecast(ctx context.Context, city types.CityInfo) (types.Forecast, error) {
	key := "forecast:" + coordKey(city)

	if raw, ok := c.lookup(ctx, key); ok {
		if f, err := types.DecodeForecast(raw); err == nil {
			return f, nil
		} else {
			c.logger.Warn("cache unmarshal failed", zap.String("key", key), zap.Error(err))
		}
	}

	f, err := c.inner.FetchForecast(ctx, city)
	if err != nil {
		return f, err
	}
	c.store(ctx, key, f.Raw)
	return f, nil
}

func (c *CachingProvider) lookup(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		c.logger.Debug("cache hit", zap.String("key", key))
		return raw, true
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Warn("redis GET failed", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}

func (c *CachingProvider) store(ctx context.Context, key string, blob []byte) {
	if len(blob) == 0 {
		return
	}
	if err := c.redis.Set(ctx, key, blob, c.ttl).Err(); err != nil {
		c.logger.Warn("redis SET failed", zap.String("key", key), zap.Error(err))
	}
}

func coordKey(city types.CityInfo) string {
	return strconv.FormatFloat(city.Latitude, 'f', 4, 64) + "," + strconv.FormatFloat(city.Longitude, 'f', 4, 64)
}
