package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/fire-weather-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(baseURL, timeout, observability.NewMetricsForTesting(), discardLogger())
}

func TestClient_Current_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "36.75", q.Get("latitude"))
		assert.Equal(t, "3.04", q.Get("longitude"))
		assert.Equal(t, "temperature_2m,relative_humidity_2m,wind_speed_10m,precipitation", q.Get("current"))
		assert.Equal(t, "auto", q.Get("timezone"))
		assert.Equal(t, "ms", q.Get("wind_speed_unit"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{
			"latitude": 36.75, "longitude": 3.04,
			"current": {
				"time": "2025-07-14T13:00",
				"temperature_2m": 33.4,
				"relative_humidity_2m": 28,
				"wind_speed_10m": 6.2,
				"precipitation": 0.0
			}
		}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	w, err := c.Current(context.Background(), 36.75, 3.04)
	require.NoError(t, err)

	require.NotNil(t, w.Temperature)
	assert.Equal(t, 33.4, *w.Temperature)
	assert.Equal(t, 28.0, *w.RelativeHumidity)
	assert.Equal(t, 6.2, *w.WindSpeed)
	assert.Equal(t, 0.0, *w.Precipitation)
	assert.Equal(t, time.Date(2025, time.July, 14, 13, 0, 0, 0, time.UTC), w.ObservedAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.WeatherFetches.WithLabelValues("success")))
}

func TestClient_Current_PartialReading(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"current": {"temperature_2m": 12.0}}`))
	}))
	defer srv.Close()

	w, err := testClient(srv.URL, 5*time.Second).Current(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, w.Temperature)
	assert.Nil(t, w.WindSpeed)
	assert.True(t, w.ObservedAt.IsZero())
}

func TestClient_Current_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.Current(context.Background(), 120, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.WeatherFetches.WithLabelValues("error")))
}

func TestClient_Current_NoCurrentBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).Current(context.Background(), 0, 0)
	assert.Error(t, err)
}

func TestClient_Current_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).Current(context.Background(), 0, 0)
	require.Error(t, err)
}

func TestCachedClient_NetworkFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listening

	cached := NewCachedWeather(testClient(url, time.Second), DefaultTTL, 10, nil,
		observability.NewMetricsForTesting(), discardLogger())

	w := cached.GetWeather(context.Background(), 36.75, 3.04)
	assert.True(t, w.Empty())
}
