package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gonum.org/v1/plot"

	"github.com/namefreezers/city-weather-charts/internal/chart"
	"github.com/namefreezers/city-weather-charts/internal/config"
	"github.com/namefreezers/city-weather-charts/internal/export"
	"github.com/namefreezers/city-weather-charts/internal/weather"
	"github.com/namefreezers/city-weather-charts/internal/weather/openweathermap"
	"github.com/namefreezers/city-weather-charts/internal/weather/types"
)

// ErrNoCities is returned when none of the requested locations could be geocoded.
var ErrNoCities = errors.New("no cities found")

// ReportService runs the geocode → fetch → save → plot pipeline behind both
// interactive programs and the HTTP API. Progress and per-city failures are
// written to out; a failing city never aborts the batch.
type ReportService struct {
	provider weather.Provider
	output   config.Output
	out      io.Writer
	logger   *zap.Logger

	openChart func(path string) error
}

func NewReportService(provider weather.Provider, cfg *config.Config, out io.Writer, logger *zap.Logger) *ReportService {
	s := &ReportService{
		provider: provider,
		output:   cfg.Output,
		out:      out,
		logger:   logger,
	}
	if cfg.OpenChart {
		s.openChart = chart.Open
	}
	return s
}

// Locate geocodes every location in order and returns the ones that were found.
// The result is never nil so it always serialises as a JSON array.
func (s *ReportService) Locate(ctx context.Context, locs []types.Location) []types.CityInfo {
	cities := make([]types.CityInfo, 0, len(locs))
	for _, loc := range locs {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(s.out, "Fetching coordinates for %s...\n", loc)
		city, err := s.provider.Geocode(ctx, loc)
		switch {
		case errors.Is(err, openweathermap.ErrNotFound):
			fmt.Fprintf(s.out, "No results found for %s\n", loc)
		case err != nil:
			fmt.Fprintf(s.out, "Error fetching coordinates for %s: %v\n", loc, err)
			s.logger.Warn("geocoding failed", zap.String("query", loc.Query()), zap.Error(err))
		default:
			cities = append(cities, city)
		}
	}
	return cities
}

// Cities is Locate for callers that need at least one match.
func (s *ReportService) Cities(ctx context.Context, locs []types.Location) ([]types.CityInfo, error) {
	cities := s.Locate(ctx, locs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(cities) == 0 {
		return nil, ErrNoCities
	}
	return cities, nil
}

// CurrentWeather fetches the current weather of every city in order, skipping failures.
func (s *ReportService) CurrentWeather(ctx context.Context, cities []types.CityInfo) []types.CurrentWeather {
	data := make([]types.CurrentWeather, 0, len(cities))
	for _, city := range cities {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(s.out, "Fetching weather data for %s...\n", city.Name)
		w, err := s.provider.FetchCurrent(ctx, city)
		if err != nil {
			fmt.Fprintf(s.out, "Error fetching weather data for %s: %v\n", city.Name, err)
			s.logger.Warn("current weather fetch failed", zap.String("city", city.Name), zap.Error(err))
			continue
		}
		data = append(data, w)
	}
	return data
}

// CityForecast pairs a forecast with the city it was requested for.
type CityForecast struct {
	City     types.CityInfo
	Forecast types.Forecast
}

// Forecasts fetches the forecast of every city in order, skipping failures.
func (s *ReportService) Forecasts(ctx context.Context, cities []types.CityInfo) []CityForecast {
	data := make([]CityForecast, 0, len(cities))
	for _, city := range cities {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(s.out, "Fetching weather forecast for %s\n", city.Name)
		f, err := s.provider.FetchForecast(ctx, city)
		if err != nil {
			fmt.Fprintf(s.out, "Error fetching weather for %s: %v\n", city.Name, err)
			s.logger.Warn("forecast fetch failed", zap.String("city", city.Name), zap.Error(err))
			continue
		}
		data = append(data, CityForecast{City: city, Forecast: f})
	}
	return data
}

// RunCurrent handles one batch of the current weather program.
// A cancelled ctx stops it before the next file is written.
func (s *ReportService) RunCurrent(ctx context.Context, locs []types.Location) error {
	cities := s.Locate(ctx, locs)
	if err := ctx.Err(); err != nil {
		return err
	}
	s.save(s.output.CoordinatesFile, cities)

	data := s.CurrentWeather(ctx, cities)
	if err := ctx.Err(); err != nil {
		return err
	}
	s.save(s.output.WeatherDataFile, data)

	p, err := chart.TemperatureBars(BarGroups(data))
	if errors.Is(err, chart.ErrNoData) {
		fmt.Fprintln(s.out, "No weather data to plot.")
		return nil
	}
	if err != nil {
		return err
	}
	return s.show(p, s.output.CurrentChartFile)
}

// RunForecast handles one batch of the forecast program.
func (s *ReportService) RunForecast(ctx context.Context, locs []types.Location) error {
	cities := s.Locate(ctx, locs)
	if err := ctx.Err(); err != nil {
		return err
	}
	s.save(s.output.CoordinatesFile, cities)

	forecasts := s.Forecasts(ctx, cities)
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, cf := range forecasts {
		if len(cf.Forecast.List) > 0 {
			fmt.Fprintf(s.out, "Plotting forecast for %s\n", cf.City.Name)
		} else {
			fmt.Fprintf(s.out, "No forecast data available for %s.\n", cf.City.Name)
		}
	}

	series, err := ForecastSeries(forecasts)
	if err != nil {
		s.logger.Warn("skipping malformed forecast entries", zap.Error(err))
	}
	var showErr error
	if p, err := chart.ForecastLines(series); err == nil {
		showErr = s.show(p, s.output.ForecastChartFile)
	} else if !errors.Is(err, chart.ErrNoData) {
		showErr = err
	}

	raw := make([]types.Forecast, len(forecasts))
	for i, cf := range forecasts {
		raw[i] = cf.Forecast
	}
	s.save(s.output.ForecastFile, raw)
	return showErr
}

// BarGroups turns current weather readings into bar chart input.
func BarGroups(data []types.CurrentWeather) []chart.BarGroup {
	groups := make([]chart.BarGroup, len(data))
	for i, w := range data {
		groups[i] = chart.BarGroup{
			Label:   w.Name,
			Current: w.Main.Temp,
			Min:     w.Main.TempMin,
			Max:     w.Main.TempMax,
		}
	}
	return groups
}

// ForecastSeries turns forecasts into line chart input. Entries with an
// unparsable dt_txt are dropped and reported in the joined error.
func ForecastSeries(forecasts []CityForecast) ([]chart.Series, error) {
	var errs []error
	series := make([]chart.Series, 0, len(forecasts))
	for _, cf := range forecasts {
		s := chart.Series{Label: cf.City.Name}
		for _, e := range cf.Forecast.List {
			t, err := e.Time()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", cf.City.Name, err))
				continue
			}
			s.Points = append(s.Points, chart.Point{Time: t, Value: e.Main.Temp})
		}
		series = append(series, s)
	}
	return series, errors.Join(errs...)
}

func (s *ReportService) save(name string, v any) {
	path := s.output.Path(name)
	if err := export.SaveJSON(path, v); err != nil {
		fmt.Fprintf(s.out, "Error writing to %s: %v\n", path, err)
		s.logger.Error("failed to save report", zap.String("path", path), zap.Error(err))
		return
	}
	fmt.Fprintf(s.out, "\nData saved to %s\n", path)
}

// show renders the chart to the output directory and opens it when configured to.
func (s *ReportService) show(p *plot.Plot, name string) error {
	path := s.output.Path(name)
	if err := chart.Save(p, path); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Chart saved to %s\n", path)
	s.logger.Info("chart rendered", zap.String("path", path))

	if s.openChart == nil {
		return nil
	}
	if err := s.openChart(path); err != nil {
		s.logger.Warn("could not open chart viewer", zap.String("path", path), zap.Error(err))
	}
	return nil
}
