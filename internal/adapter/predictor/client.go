// Package predictor is the HTTP client the interactive console uses to reach
// the prediction service.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/fire-weather-service/internal/domain"
)

// ErrUnavailable means the prediction service could not be reached or is not healthy.
var ErrUnavailable = errors.New("prediction service unavailable")

const healthTimeout = 3 * time.Second

// Client calls the prediction service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Health returns nil when the service answers /health with 200 and a loaded model.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned status %d", ErrUnavailable, resp.StatusCode)
	}
	var body struct {
		Status      string `json:"status"`
		ModelLoaded bool   `json:"model_loaded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: decode health: %v", ErrUnavailable, err)
	}
	if !body.ModelLoaded {
		return fmt.Errorf("%w: model not loaded", ErrUnavailable)
	}
	return nil
}

// Predict posts a feature vector. A transport failure returns ErrUnavailable;
// a service-side failure comes back as a failed result with a nil error.
func (c *Client) Predict(ctx context.Context, v domain.FeatureVector) (domain.PredictionResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("marshal features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(data, &e) != nil || e.Detail == "" {
			e.Detail = fmt.Sprintf("prediction service returned status %d", resp.StatusCode)
		}
		return domain.Failure(errors.New(e.Detail)), nil
	}

	var ok struct {
		FWIPrediction *float64 `json:"FWI_prediction"`
		Status        string   `json:"status"`
	}
	if err := json.Unmarshal(data, &ok); err != nil || ok.FWIPrediction == nil {
		return domain.Failure(errors.New("prediction service returned an unreadable response")), nil
	}
	return domain.Success(*ok.FWIPrediction), nil
}
