package httpclient

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingObserver struct {
	statuses []int
}

func (r *recordingObserver) ObserveUpstream(_ string, status int, _ time.Duration) {
	r.statuses = append(r.statuses, status)
}

func TestRedactURL(t *testing.T) {
	u, err := url.Parse("https://api.openweathermap.org/data/2.5/weather?lat=1&appid=secret")
	require.NoError(t, err)

	got := RedactURL(u)
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "appid=REDACTED")
	assert.Contains(t, u.String(), "secret", "input must not be modified")

	plain, _ := url.Parse("https://example.com/x?q=London")
	assert.Equal(t, "https://example.com/x?q=London", RedactURL(plain))
}

func TestRoundTripper_LogsAndObserves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	core, logs := observer.New(zap.DebugLevel)
	rec := &recordingObserver{}
	client := New(time.Second, zap.New(core), rec)

	resp, err := client.Get(srv.URL + "/geo?appid=secret")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []int{http.StatusTeapot}, rec.statuses)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "HTTP request completed", entry.Message)
	assert.NotContains(t, entry.ContextMap()["url"], "secret")
}

func TestRoundTripper_TransportError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	rec := &recordingObserver{}
	client := New(time.Second, zap.New(core), rec)

	_, err := client.Get("http://127.0.0.1:1/unreachable")
	require.Error(t, err)
	assert.Equal(t, []int{0}, rec.statuses)
	assert.Equal(t, 1, logs.FilterMessage("HTTP request failed").Len())
}
