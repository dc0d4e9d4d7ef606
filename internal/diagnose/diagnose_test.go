package diagnose

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragstack/internal/config"
)

func TestRunAllReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out bytes.Buffer
	report := Run(context.Background(), []Target{
		{Name: "api", URL: srv.URL, MaxRetries: 3, Delay: time.Millisecond, Timeout: time.Second},
	}, &out)

	assert.True(t, report.AllOK())
	require.Len(t, report.Results, 1)
	assert.Equal(t, 1, report.Results[0].Attempts)
	assert.Equal(t, http.StatusOK, report.Results[0].Status)
	assert.Contains(t, out.String(), "attempt 1/3: HTTP 200")
	assert.Contains(t, out.String(), "api:")
	assert.Contains(t, out.String(), "OK")
}

func TestRunRetriesUntilReachable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out bytes.Buffer
	report := Run(context.Background(), []Target{
		{Name: "weaviate", URL: srv.URL, MaxRetries: 5, Delay: time.Millisecond, Timeout: time.Second},
	}, &out)

	assert.True(t, report.AllOK())
	assert.Equal(t, 3, report.Results[0].Attempts)
}

func TestRunNon200IsNotOK(t *testing.T) {
	// Diagnostics are stricter than readiness probing: only HTTP 200 counts.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var out bytes.Buffer
	report := Run(context.Background(), []Target{
		{Name: "ui", URL: srv.URL, MaxRetries: 2, Delay: time.Millisecond, Timeout: time.Second},
	}, &out)

	assert.False(t, report.AllOK())
	res := report.Results[0]
	assert.Equal(t, 2, res.Attempts, "retry budget exhausted")
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.ErrorContains(t, res.LastErr, "HTTP 404")
}

func TestRunContinuesPastFailedTarget(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadURL := "http://" + ln.Addr().String()
	ln.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out bytes.Buffer
	report := Run(context.Background(), []Target{
		{Name: "weaviate", URL: deadURL, MaxRetries: 2, Delay: time.Millisecond, Timeout: time.Second},
		{Name: "api", URL: srv.URL, MaxRetries: 2, Delay: time.Millisecond, Timeout: time.Second},
	}, &out)

	assert.False(t, report.AllOK())
	require.Len(t, report.Results, 2, "a failed target does not abort the run")
	assert.False(t, report.Results[0].OK)
	assert.True(t, report.Results[1].OK)
	assert.Contains(t, out.String(), "FAILED")
}

func TestTargetsFromConfig(t *testing.T) {
	cfg := config.StackConfig{
		Services: []config.ServiceDefinition{
			{
				Name:    "weaviate",
				Enabled: true,
				Readiness: config.ProbeDefinition{
					Type: config.ProbeTypeHTTP,
					URL:  "http://localhost:8080/v1/.well-known/ready",
				},
			},
			{
				Name:    "postgres",
				Enabled: true,
				Readiness: config.ProbeDefinition{
					Type:    config.ProbeTypeTCP,
					Address: "localhost:5432",
				},
			},
			{
				Name:    "disabled",
				Enabled: false,
				Readiness: config.ProbeDefinition{
					Type: config.ProbeTypeHTTP,
					URL:  "http://localhost:9999/",
				},
			},
		},
	}

	targets := TargetsFromConfig(cfg)
	require.Len(t, targets, 1, "only enabled HTTP endpoints become targets")
	assert.Equal(t, "weaviate", targets[0].Name)
	assert.Equal(t, "http://localhost:8080/v1/.well-known/ready", targets[0].URL)
	assert.Equal(t, DefaultMaxRetries, targets[0].MaxRetries)
	assert.Equal(t, DefaultDelay, targets[0].Delay)
}
