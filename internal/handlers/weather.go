package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gonum.org/v1/plot"

	"github.com/namefreezers/city-weather-charts/internal/chart"
	"github.com/namefreezers/city-weather-charts/internal/prompt"
	"github.com/namefreezers/city-weather-charts/internal/services"
	"github.com/namefreezers/city-weather-charts/internal/weather/types"
)

// locationsRequest is the "q" query parameter, in the same syntax as the interactive prompt
type locationsRequest struct {
	Q string `form:"q" binding:"required"`
}

// bindLocations parses ?q= and writes a 400 when it holds no usable location.
func bindLocations(c *gin.Context) ([]types.Location, bool) {
	var req locationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	locs := prompt.ParseLocations(req.Q)
	if len(locs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q must contain at least one city"})
		return nil, false
	}
	return locs, true
}

// locate resolves ?q= to cities, answering 400/404 itself when that fails.
func locate(c *gin.Context, reports *services.ReportService) ([]types.CityInfo, bool) {
	locs, ok := bindLocations(c)
	if !ok {
		return nil, false
	}
	cities, err := reports.Cities(c.Request.Context(), locs)
	if err != nil {
		if errors.Is(err, services.ErrNoCities) {
			// 404 nothing geocoded
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return nil, false
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return nil, false
	}
	return cities, true
}

// CoordinatesHandler returns a Gin handler for GET /api/coordinates
func CoordinatesHandler(reports *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cities, ok := locate(c, reports)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, cities)
	}
}

// WeatherHandler returns a Gin handler for GET /api/weather.
// The body is the list of upstream current weather documents, unchanged.
func WeatherHandler(reports *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cities, ok := locate(c, reports)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, reports.CurrentWeather(c.Request.Context(), cities))
	}
}

// ForecastHandler returns a Gin handler for GET /api/forecast
func ForecastHandler(reports *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cities, ok := locate(c, reports)
		if !ok {
			return
		}
		forecasts := reports.Forecasts(c.Request.Context(), cities)
		raw := make([]types.Forecast, len(forecasts))
		for i, cf := range forecasts {
			raw[i] = cf.Forecast
		}
		c.JSON(http.StatusOK, raw)
	}
}

// CurrentChartHandler returns a Gin handler for GET /api/charts/current.png
func CurrentChartHandler(reports *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cities, ok := locate(c, reports)
		if !ok {
			return
		}
		data := reports.CurrentWeather(c.Request.Context(), cities)
		p, err := chart.TemperatureBars(services.BarGroups(data))
		writeChart(c, p, err)
	}
}

// ForecastChartHandler returns a Gin handler for GET /api/charts/forecast.png
func ForecastChartHandler(reports *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cities, ok := locate(c, reports)
		if !ok {
			return
		}
		// malformed entries are dropped; the rest still plots
		series, _ := services.ForecastSeries(reports.Forecasts(c.Request.Context(), cities))
		p, err := chart.ForecastLines(series)
		writeChart(c, p, err)
	}
}

func writeChart(c *gin.Context, p *plot.Plot, err error) {
	if errors.Is(err, chart.ErrNoData) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := chart.WritePNG(p, &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
