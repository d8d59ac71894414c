package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// OpenWeatherMap holds the upstream API settings.
type OpenWeatherMap struct {
	APIKey      string `envconfig:"OPENWEATHERMAP_API_KEY" required:"true"`
	GeoURL      string `envconfig:"OPENWEATHERMAP_GEO_URL" default:"https://api.openweathermap.org/geo/1.0/direct"`
	WeatherURL  string `envconfig:"OPENWEATHERMAP_WEATHER_URL" default:"https://api.openweathermap.org/data/2.5/weather"`
	ForecastURL string `envconfig:"OPENWEATHERMAP_FORECAST_URL" default:"https://api.openweathermap.org/data/2.5/forecast"`
	Units       string `envconfig:"OPENWEATHERMAP_UNITS" default:"metric"`
	GeoLimit    int    `envconfig:"OPENWEATHERMAP_GEO_LIMIT" default:"1"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	// RateLimitDelay is slept after every geocoding and current-weather call.
	RateLimitDelay time.Duration `envconfig:"RATE_LIMIT_DELAY" default:"1s"`
}

// Output controls where reports are written.
type Output struct {
	Dir               string `envconfig:"OUTPUT_DIR" default:"."`
	CoordinatesFile   string `envconfig:"COORDINATES_FILE" default:"city_coordinates.json"`
	WeatherDataFile   string `envconfig:"WEATHER_DATA_FILE" default:"city_weather_data.json"`
	ForecastFile      string `envconfig:"FORECAST_FILE" default:"city_weather_forecast.json"`
	CurrentChartFile  string `envconfig:"CURRENT_CHART_FILE" default:"city_weather_chart.png"`
	ForecastChartFile string `envconfig:"FORECAST_CHART_FILE" default:"city_weather_forecast.png"`
	OpenChart         bool   `envconfig:"OPEN_CHART" default:"true"`
}

// Path joins name onto the output directory.
func (o Output) Path(name string) string {
	return filepath.Join(o.Dir, name)
}

// Redis is optional; an empty Addr disables the response cache.
type Redis struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"CACHE_TTL" default:"10m"`
}

// Database is optional; the scheduler and /api/history need it.
type Database struct {
	URL string `envconfig:"DATABASE_URL"`
}

type Scheduler struct {
	Spec   string `envconfig:"SCHEDULE_SPEC" default:"0 * * * *"`
	Cities string `envconfig:"SCHEDULE_CITIES"`
}

type Server struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// Config holds all the environment-driven settings for the application.
// The sections are embedded so every variable is read under its bare name.
type Config struct {
	OpenWeatherMap
	Output
	Redis
	Database
	Scheduler
	Server

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the optional dotenv files (".env" when none are given) and then the
// process environment. Variables already set in the environment win over the files.
// It returns an error if a required variable is missing or malformed.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, errors.New("OPENWEATHERMAP_API_KEY environment variable not set")
	}
	if cfg.GeoLimit < 1 {
		return nil, fmt.Errorf("invalid OPENWEATHERMAP_GEO_LIMIT %d: must be at least 1", cfg.GeoLimit)
	}
	if cfg.RateLimitDelay < 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_DELAY %s: must not be negative", cfg.RateLimitDelay)
	}
	return &cfg, nil
}
