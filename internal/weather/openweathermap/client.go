package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/namefreezers/city-weather-charts/internal/config"
	"github.com/namefreezers/city-weather-charts/internal/weather/types"
)

var (
	// ErrNotFound is returned when geocoding yields no result for a location.
	ErrNotFound = errors.New("openweathermap: no results found")

	// ErrUnexpectedStatus wraps every non-200 response.
	ErrUnexpectedStatus = errors.New("openweathermap: unexpected status")
)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the geocoding, current weather and forecast endpoints.
// Calls are blocking and are meant to be issued one after another.
type Client struct {
	apiKey      string
	geoURL      string
	weatherURL  string
	forecastURL string
	units       string
	geoLimit    int
	delay       time.Duration

	http   HTTPClient
	logger *zap.Logger
}

func NewClient(cfg *config.Config, httpClient HTTPClient, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENWEATHERMAP_API_KEY is not set")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		apiKey:      cfg.APIKey,
		geoURL:      cfg.GeoURL,
		weatherURL:  cfg.WeatherURL,
		forecastURL: cfg.ForecastURL,
		units:       cfg.Units,
		geoLimit:    cfg.GeoLimit,
		delay:       cfg.RateLimitDelay,
		http:        httpClient,
		logger:      logger,
	}, nil
}

type geoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   *string `json:"state"`
}

// Geocode resolves a location to coordinates. The first result wins.
// The rate limit pause is taken even when the call fails.
func (c *Client) Geocode(ctx context.Context, loc types.Location) (types.CityInfo, error) {
	defer c.pause(ctx)

	params := url.Values{}
	params.Set("q", loc.Query())
	params.Set("limit", strconv.Itoa(c.geoLimit))

	body, err := c.get(ctx, c.geoURL, params)
	if err != nil {
		return types.CityInfo{}, err
	}

	var results []geoResult
	if err := json.Unmarshal(body, &results); err != nil {
		return types.CityInfo{}, fmt.Errorf("openweathermap: JSON decode error: %w", err)
	}
	if len(results) == 0 {
		return types.CityInfo{}, ErrNotFound
	}

	r := results[0]
	c.logger.Debug("geocoded location",
		zap.String("query", loc.Query()),
		zap.String("name", r.Name),
		zap.Float64("lat", r.Lat),
		zap.Float64("lon", r.Lon),
	)
	return types.CityInfo{
		Name:      r.Name,
		Latitude:  r.Lat,
		Longitude: r.Lon,
		Country:   r.Country,
		State:     r.State,
	}, nil
}

// FetchCurrent returns the current weather at the city's coordinates.
func (c *Client) FetchCurrent(ctx context.Context, city types.CityInfo) (types.CurrentWeather, error) {
	defer c.pause(ctx)

	body, err := c.get(ctx, c.weatherURL, c.coordParams(city))
	if err != nil {
		return types.CurrentWeather{}, err
	}
	w, err := types.DecodeCurrent(body)
	if err != nil {
		return types.CurrentWeather{}, fmt.Errorf("openweathermap: JSON decode error: %w", err)
	}
	return w, nil
}

// FetchForecast returns the 5 day / 3 hour forecast at the city's coordinates.
func (c *Client) FetchForecast(ctx context.Context, city types.CityInfo) (types.Forecast, error) {
	body, err := c.get(ctx, c.forecastURL, c.coordParams(city))
	if err != nil {
		return types.Forecast{}, err
	}
	f, err := types.DecodeForecast(body)
	if err != nil {
		return types.Forecast{}, fmt.Errorf("openweathermap: JSON decode error: %w", err)
	}
	return f, nil
}

func (c *Client) coordParams(city types.CityInfo) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(city.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(city.Longitude, 'f', -1, 64))
	params.Set("units", c.units)
	return params
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("openweathermap: invalid endpoint %q: %w", endpoint, err)
	}
	params.Set("appid", c.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("openweathermap: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openweathermap: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w %d %s", ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openweathermap: failed to read body: %w", err)
	}
	return body, nil
}

// pause sleeps for the configured delay unless ctx ends first.
func (c *Client) pause(ctx context.Context) {
	if c.delay <= 0 {
		return
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
