package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/corex-health/corex/internal/shared/config"
	"github.com/corex-health/corex/internal/shared/metrics"
)

// Client talks to the remote drug-recommendation service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new prediction service client
func NewClient(cfg config.PredictorConfig) *Client {
	return &Client{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// StatusError reports a non-2xx response from the prediction service.
// It stays server-side; users only ever see the generic submit message.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("prediction service returned status %d", e.Code)
}

// Predict sends one recommendation request. A single best-effort attempt:
// no retries, the configured client timeout is the only bound.
func (c *Client) Predict(ctx context.Context, payload RequestPayload) (*PredictionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObservePrediction(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The failure body is not part of the contract; drain and drop it
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var result PredictionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode prediction response: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prediction response: %w", err)
	}

	return &result, nil
}
