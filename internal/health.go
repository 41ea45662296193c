package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type HealthStatus struct {
	URL     string
	Healthy bool
	Message string
	Latency time.Duration
}

// HTTPHealthCheck checks a service's /health endpoint. A service is healthy when
// it answers 200 with {"status": "healthy"}.
type HTTPHealthCheck struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPHealthCheck(url string, timeout time.Duration, client *http.Client) *HTTPHealthCheck {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPHealthCheck{url: url, timeout: timeout, client: client}
}

func (h *HTTPHealthCheck) Check(ctx context.Context) (s HealthStatus) {
	s.URL = h.url
	start := time.Now()
	defer func() { s.Latency = time.Since(start) }()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		s.Message = fmt.Sprintf("Server check failed: %v", err)
		return s
	}

	resp, err := h.client.Do(req)
	if err != nil {
		s.Message = fmt.Sprintf("Server check failed: %v", err)
		return s
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.Message = fmt.Sprintf("Server returned status %d", resp.StatusCode)
		return s
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		s.Message = fmt.Sprintf("Server check failed: %v", err)
		return s
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		s.Message = fmt.Sprintf("Server check failed: invalid JSON: %v", err)
		return s
	}
	if payload["status"] != "healthy" {
		s.Message = fmt.Sprintf("Server unhealthy: %s", string(body))
		return s
	}

	s.Healthy = true
	s.Message = "Server healthy"
	return s
}
