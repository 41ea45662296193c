package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func healthServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		healthy bool
		message string
	}{
		{"healthy", http.StatusOK, `{"status": "healthy"}`, true, "Server healthy"},
		{"unhealthy payload", http.StatusOK, `{"status": "degraded"}`, false, "Server unhealthy"},
		{"bad json", http.StatusOK, `not json`, false, "invalid JSON"},
		{"server error", http.StatusInternalServerError, `{"status": "healthy"}`, false, "Server returned status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := healthServer(t, tt.status, tt.body)
			check := NewHTTPHealthCheck(srv.URL+"/health", time.Second, srv.Client())

			s := check.Check(context.Background())
			assert.Equal(t, tt.healthy, s.Healthy)
			assert.Contains(t, s.Message, tt.message)
			assert.Equal(t, srv.URL+"/health", s.URL)
			assert.Greater(t, s.Latency, time.Duration(0))
		})
	}
}

func TestHTTPHealthCheckTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	check := NewHTTPHealthCheck(srv.URL, 50*time.Millisecond, srv.Client())
	s := check.Check(context.Background())
	assert.False(t, s.Healthy)
	assert.Contains(t, s.Message, "Server check failed")
	assert.Less(t, s.Latency, 5*time.Second)
}

func TestHTTPHealthCheckUnreachable(t *testing.T) {
	srv := healthServer(t, http.StatusOK, "")
	url := srv.URL
	srv.Close()

	s := NewHTTPHealthCheck(url, time.Second, nil).Check(context.Background())
	assert.False(t, s.Healthy)
	assert.Contains(t, s.Message, "Server check failed")
}
