package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/fire-weather-service/internal/domain"
	"github.com/couchcryptid/fire-weather-service/internal/observability"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const currentMetrics = "temperature_2m,relative_humidity_2m,wind_speed_10m,precipitation"

// Client fetches current conditions from the Open-Meteo forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client. Every request is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Current returns the current weather at a coordinate. Wind speed is
// requested in m/s.
func (c *Client) Current(ctx context.Context, lat, lon float64) (domain.WeatherPayload, error) {
	params := url.Values{
		"latitude":        {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":       {strconv.FormatFloat(lon, 'f', -1, 64)},
		"current":         {currentMetrics},
		"timezone":        {"auto"},
		"wind_speed_unit": {"ms"},
	}

	start := time.Now()
	payload, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.WeatherFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.WeatherFetches.WithLabelValues("error").Inc()
		return domain.WeatherPayload{}, err
	}
	c.metrics.WeatherFetches.WithLabelValues("success").Inc()
	return payload, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.WeatherPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.WeatherPayload{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherPayload{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.WeatherPayload{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.WeatherPayload{}, fmt.Errorf("decode response: %w", err)
	}
	if r.Current == nil {
		return domain.WeatherPayload{}, fmt.Errorf("open-meteo response has no current block")
	}

	cur := r.Current
	payload := domain.WeatherPayload{
		Temperature:      cur.Temperature,
		RelativeHumidity: cur.RelativeHumidity,
		WindSpeed:        cur.WindSpeed,
		Precipitation:    cur.Precipitation,
	}
	if t, err := time.Parse("2006-01-02T15:04", cur.Time); err == nil {
		payload.ObservedAt = t
	}
	return payload, nil
}

// Open-Meteo API response types.

type response struct {
	Current *current `json:"current"`
}

type current struct {
	Time             string   `json:"time"` // local time, no zone
	Temperature      *float64 `json:"temperature_2m"`
	RelativeHumidity *float64 `json:"relative_humidity_2m"`
	WindSpeed        *float64 `json:"wind_speed_10m"`
	Precipitation    *float64 `json:"precipitation"`
}
