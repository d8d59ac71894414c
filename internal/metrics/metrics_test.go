package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(200))
	assert.Equal(t, "3xx", StatusClass(304))
	assert.Equal(t, "4xx", StatusClass(404))
	assert.Equal(t, "5xx", StatusClass(503))
	assert.Equal(t, "error", StatusClass(0))
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics("test")

	r := gin.New()
	r.Use(m.HTTPMiddleware())
	r.GET("/api/weather", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/weather", nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	got := testutil.ToFloat64(m.HTTPRequestsTotal.With(prometheus.Labels{
		"method": "GET", "endpoint": "/api/weather", "status_class": "4xx",
	}))
	assert.Equal(t, 2.0, got)

	got = testutil.ToFloat64(m.HTTPRequestsTotal.With(prometheus.Labels{
		"method": "GET", "endpoint": "unmatched", "status_class": "4xx",
	}))
	assert.Equal(t, 1.0, got)
}

func TestObserveUpstreamAndHandler(t *testing.T) {
	m := NewMetrics("test")
	m.ObserveUpstream("api.openweathermap.org", 200, 20*time.Millisecond)
	m.ObserveUpstream("api.openweathermap.org", 0, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequestsTotal.With(prometheus.Labels{
		"host": "api.openweathermap.org", "status_class": "error",
	})))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "test_upstream_requests_total"))
}

func TestNewMetrics_Twice(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("a")
		NewMetrics("a")
	})
}
