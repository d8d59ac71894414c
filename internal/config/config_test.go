package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotenv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENWEATHERMAP_API_KEY", "secret")

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "https://api.openweathermap.org/geo/1.0/direct", cfg.GeoURL)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5/weather", cfg.WeatherURL)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5/forecast", cfg.ForecastURL)
	assert.Equal(t, "metric", cfg.Units)
	assert.Equal(t, 1, cfg.GeoLimit)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Second, cfg.RateLimitDelay)
	assert.Equal(t, "city_coordinates.json", cfg.CoordinatesFile)
	assert.Equal(t, "city_weather_data.json", cfg.WeatherDataFile)
	assert.Equal(t, "city_weather_forecast.json", cfg.ForecastFile)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "0 * * * *", cfg.Spec)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.OpenChart)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENWEATHERMAP_API_KEY", "")
	os.Unsetenv("OPENWEATHERMAP_API_KEY")

	_, err := Load(noDotenv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENWEATHERMAP_API_KEY")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OPENWEATHERMAP_API_KEY", "secret")
	t.Setenv("RATE_LIMIT_DELAY", "250ms")
	t.Setenv("OUTPUT_DIR", "/tmp/reports")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("OPEN_CHART", "false")

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.RateLimitDelay)
	assert.Equal(t, "cache:6379", cfg.Addr)
	assert.False(t, cfg.OpenChart)
	assert.Equal(t, filepath.Join("/tmp/reports", "city_coordinates.json"), cfg.Path(cfg.CoordinatesFile))
}

func TestLoad_DotenvFile(t *testing.T) {
	t.Setenv("OPENWEATHERMAP_API_KEY", "")
	os.Unsetenv("OPENWEATHERMAP_API_KEY")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("OPENWEATHERMAP_API_KEY=from-file\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.APIKey)
}

func TestLoad_InvalidGeoLimit(t *testing.T) {
	t.Setenv("OPENWEATHERMAP_API_KEY", "secret")
	t.Setenv("OPENWEATHERMAP_GEO_LIMIT", "0")

	_, err := Load(noDotenv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENWEATHERMAP_GEO_LIMIT")
}
