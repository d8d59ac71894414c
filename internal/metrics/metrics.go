package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	// API served by this process
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Calls made to OpenWeatherMap
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	ObservationsRecorded prometheus.Counter
}

// NewMetrics builds the collectors on a private registry so several
// instances can coexist in one process.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	httpLabels := []string{"method", "endpoint", "status_class"}
	upstreamLabels := []string{"host", "status_class"}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		httpLabels,
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of served HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		httpLabels,
	)
	m.UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of requests sent to the weather API",
		},
		upstreamLabels,
	)
	m.UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of weather API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		upstreamLabels,
	)
	m.ObservationsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_recorded_total",
			Help:      "Total number of weather observations stored",
		},
	)

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.UpstreamRequestsTotal,
		m.UpstreamRequestDuration,
		m.ObservationsRecorded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// HTTPMiddleware records count and latency of every request by route template.
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		labels := prometheus.Labels{
			"method":       c.Request.Method,
			"endpoint":     endpoint,
			"status_class": StatusClass(c.Writer.Status()),
		}
		m.HTTPRequestsTotal.With(labels).Inc()
		m.HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}

// ObserveUpstream records one outgoing call. status 0 means the call failed before a response.
func (m *Metrics) ObserveUpstream(host string, status int, d time.Duration) {
	labels := prometheus.Labels{"host": host, "status_class": StatusClass(status)}
	m.UpstreamRequestsTotal.With(labels).Inc()
	m.UpstreamRequestDuration.With(labels).Observe(d.Seconds())
}

func StatusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= http.StatusInternalServerError:
		return "5xx"
	case status == 0:
		return "error"
	default:
		return strconv.Itoa(status)
	}
}
