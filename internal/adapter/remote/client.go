// Package remote evaluates predictions on an upstream prediction service that
// speaks the same /api/predict contract as this one.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
	"github.com/couchcryptid/fire-weather-api/internal/observability"
)

const maxResponseBytes = 1 << 20

// Client implements predict.Model by forwarding feature vectors upstream.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a remote model client. baseURL has no trailing slash.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Predict posts the features to <baseURL>/api/predict.
//
// An upstream 400 carrying {"error": msg} becomes a *domain.ComputationError
// with msg; every other failure is a *domain.InternalError.
func (c *Client) Predict(ctx context.Context, features domain.FeatureVector) (float64, error) {
	start := time.Now()
	y, outcome, err := c.doRequest(ctx, features)
	c.metrics.RemoteDuration.Observe(time.Since(start).Seconds())
	c.metrics.RemoteRequests.WithLabelValues(outcome).Inc()
	if err != nil && outcome == "error" {
		c.logger.Warn("remote model request failed", "url", c.baseURL, "error", err)
	}
	return y, err
}

func (c *Client) doRequest(ctx context.Context, features domain.FeatureVector) (float64, string, error) {
	payload, err := json.Marshal(features)
	if err != nil {
		return 0, "error", internal(fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/predict", bytes.NewReader(payload))
	if err != nil {
		return 0, "error", internal(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "error", internal(fmt.Errorf("remote predict request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, "error", internal(fmt.Errorf("read response: %w", err))
	}

	var out response
	decodeErr := json.Unmarshal(body, &out)

	switch {
	case resp.StatusCode == http.StatusBadRequest && decodeErr == nil && out.Error != "":
		return 0, "rejected", &domain.ComputationError{Reason: out.Error}
	case resp.StatusCode != http.StatusOK:
		return 0, "error", internal(fmt.Errorf("remote model error: status %d: %s", resp.StatusCode, truncate(body)))
	case decodeErr != nil:
		return 0, "error", internal(fmt.Errorf("decode response: %w", decodeErr))
	case out.Result == nil:
		return 0, "error", internal(errors.New("response has no result"))
	}
	return *out.Result, "success", nil
}

func internal(err error) error {
	return &domain.InternalError{Op: "remote model", Err: err}
}

func truncate(b []byte) []byte {
	const limit = 256
	b = bytes.TrimSpace(b)
	if len(b) > limit {
		return b[:limit]
	}
	return b
}

type response struct {
	Result *float64 `json:"result"`
	Error  string   `json:"error"`
}
