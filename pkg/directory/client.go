package directory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bizsync/pkg/directory/types"
)

// maxResponseBytes caps how much of a replay response body is retained.
const maxResponseBytes = 1 << 20

type DirectoryClient struct {
	baseURL    string
	healthPath string
	client     *http.Client
	probe      *http.Client
}

// NewClient creates a directory API client from the given configuration.
func NewClient(cfg types.ClientConfig) types.Client {
	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = "/health"
	}

	return &DirectoryClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		healthPath: healthPath,
		client:     &http.Client{Timeout: cfg.Timeout},
		probe:      &http.Client{Timeout: cfg.ProbeTimeout},
	}
}

// Do sends a mutation to the directory API. Relative URLs are resolved
// against the configured base URL so queued actions can store just the
// endpoint path.
func (c *DirectoryClient) Do(ctx context.Context, replayReq types.ReplayRequest) (*types.ReplayResponse, error) {
	target := replayReq.URL
	if strings.HasPrefix(target, "/") {
		target = c.baseURL + target
	}

	var body io.Reader
	if len(replayReq.Body) > 0 {
		body = bytes.NewReader(replayReq.Body)
	}

	req, err := http.NewRequestWithContext(ctx, replayReq.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if replayReq.Token != "" {
		req.Header.Set("Authorization", "Bearer "+replayReq.Token)
	}
	if replayReq.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", replayReq.IdempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	result := &types.ReplayResponse{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return result, nil
}

// Ping issues a lightweight health probe against the API.
func (c *DirectoryClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+c.healthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}

	resp, err := c.probe.Do(req)
	if err != nil {
		return fmt.Errorf("health probe failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health probe returned status %d", resp.StatusCode)
	}

	return nil
}
