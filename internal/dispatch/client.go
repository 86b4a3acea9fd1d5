// Package dispatch drives the multi-turn request/response exchange with the
// external agent endpoint, enforcing turn limits, retry/backoff, and the
// anonymization gate. A bad task degrades to an empty zero-confidence answer
// and never fails the deal.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/dealbench/internal/model"
	"github.com/ppiankov/dealbench/internal/util"
	"github.com/ppiankov/dealbench/internal/worker"
)

// Caller sends one agent request and returns the parsed response. The HTTP
// implementation is used in real runs; tests inject fakes.
type Caller interface {
	Call(ctx context.Context, req *model.ArtifactAgentRequest) (*model.ArtifactAgentResponse, error)
}

// sleepFunc is the sleep used between retries (injectable for tests).
var sleepFunc = time.Sleep

// HTTPCaller posts agent requests as JSON to a fixed endpoint with bounded
// retry and per-endpoint rate limiting.
type HTTPCaller struct {
	endpoint   string
	httpClient *http.Client
	limiter    *worker.Limiter
	maxRetries int
}

// NewHTTPCaller creates a caller for the configured agent endpoint.
func NewHTTPCaller(cfg model.AgentConfig) *HTTPCaller {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &HTTPCaller{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		limiter:    worker.NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize),
		maxRetries: maxRetries,
	}
}

// Call validates the request, then posts it with retry on transient
// failures. A response that fails to parse or validate is returned as an
// error; the dispatcher decides how to degrade.
func (c *HTTPCaller) Call(ctx context.Context, req *model.ArtifactAgentRequest) (*model.ArtifactAgentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("agent request: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal agent request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			sleepFunc(backoff)
		}

		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		resp, retryable, err := c.post(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, fmt.Errorf("agent call failed after retries: %w", lastErr)
}

// post performs a single request attempt. The second return value reports
// whether the failure is worth retrying.
func (c *HTTPCaller) post(ctx context.Context, body []byte) (*model.ArtifactAgentResponse, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, isRetryableNetworkError(err.Error()), fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		retryable := httpResp.StatusCode >= 500 || httpResp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, fmt.Errorf("agent returned %d: %s", httpResp.StatusCode, truncate(respBody, 200))
	}

	var resp model.ArtifactAgentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		// Malformed payloads are a contract problem, not a transient one.
		return nil, false, fmt.Errorf("unmarshal response: %w", err)
	}
	if err := resp.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid response: %w", err)
	}

	return &resp, false, nil
}

func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "deadline exceeded")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
