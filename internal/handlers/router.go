package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/namefreezers/city-weather-charts/internal/metrics"
	"github.com/namefreezers/city-weather-charts/internal/services"
)

// NewRouter mounts the API. observations and m may be nil, which leaves out
// /api/history, /api/runs/:id and /metrics respectively.
func NewRouter(
	reports *services.ReportService,
	observations services.ObservationService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	if m != nil {
		router.Use(m.HTTPMiddleware())
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := router.Group("/api")
	{
		api.GET("/coordinates", CoordinatesHandler(reports))
		api.GET("/weather", WeatherHandler(reports))
		api.GET("/forecast", ForecastHandler(reports))
		api.GET("/charts/current.png", CurrentChartHandler(reports))
		api.GET("/charts/forecast.png", ForecastChartHandler(reports))
		if observations != nil {
			api.GET("/history", HistoryHandler(observations))
			api.GET("/runs/:id", RunHandler(observations))
		}
	}
	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request served",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
