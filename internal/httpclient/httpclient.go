package httpclient

import (
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Observer receives the outcome of every outgoing request. status is 0 on transport errors.
type Observer interface {
	ObserveUpstream(host string, status int, d time.Duration)
}

// redacted lists query parameters that must never reach the logs.
var redacted = []string{"appid"}

type RoundTripper struct {
	Logger   *zap.Logger
	Proxy    http.RoundTripper
	Observer Observer
}

func NewRoundTripper(logger *zap.Logger, observer Observer) *RoundTripper {
	return &RoundTripper{
		Logger:   logger,
		Proxy:    http.DefaultTransport,
		Observer: observer,
	}
}

func (l *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := l.Proxy.RoundTrip(req)
	duration := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if l.Observer != nil {
		l.Observer.ObserveUpstream(req.URL.Host, status, duration)
	}

	if err != nil {
		l.Logger.Error("HTTP request failed",
			zap.String("method", req.Method),
			zap.String("url", RedactURL(req.URL)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	l.Logger.Debug("HTTP request completed",
		zap.String("method", req.Method),
		zap.String("url", RedactURL(req.URL)),
		zap.Int("status_code", status),
		zap.Duration("duration", duration),
	)
	return resp, nil
}

// New returns an http.Client with the given overall timeout whose requests are logged
// and, when observer is non-nil, measured.
func New(timeout time.Duration, logger *zap.Logger, observer Observer) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewRoundTripper(logger, observer),
	}
}

// RedactURL renders u with secret query values masked.
func RedactURL(u *url.URL) string {
	q := u.Query()
	changed := false
	for _, k := range redacted {
		if q.Has(k) {
			q.Set(k, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return u.String()
	}
	c := *u
	c.RawQuery = q.Encode()
	return c.String()
}
