package predictor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/fire-weather-service/internal/adapter/http"
	"github.com/couchcryptid/fire-weather-service/internal/adapter/predictor"
	"github.com/couchcryptid/fire-weather-service/internal/domain"
	"github.com/couchcryptid/fire-weather-service/internal/observability"
	"github.com/couchcryptid/fire-weather-service/internal/pipeline"
	"github.com/couchcryptid/fire-weather-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readyAlways struct{}

func (readyAlways) CheckReadiness(context.Context) error { return nil }

// startService runs the real HTTP surface over the demo model.
func startService(t *testing.T) *httptest.Server {
	t.Helper()
	order, sa, ma := pipeline.DemoArtifacts()
	scaler, err := sa.Build()
	require.NoError(t, err)
	model, err := ma.Build()
	require.NoError(t, err)
	p, err := pipeline.New(order, scaler, model)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(p, logger, observability.NewMetricsForTesting())
	srv := httptest.NewServer(httpadapter.NewServer(":0", svc, readyAlways{}, logger))
	t.Cleanup(srv.Close)
	return srv
}

func hotDry() domain.FeatureVector {
	return domain.FeatureVector{Temperature: 38, RH: 15, Ws: 25, Rain: 0, FFMC: 85, DMC: 20, DC: 100, ISI: 8, BUI: 25}
}

func TestClient_HealthAndPredict(t *testing.T) {
	srv := startService(t)
	c := predictor.NewClient(srv.URL+"/", 5*time.Second)

	require.NoError(t, c.Health(context.Background()))

	res, err := c.Predict(context.Background(), hotDry())
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.InDelta(t, 12.4, res.Value, 1e-9)
}

func TestClient_PredictRequestFailed(t *testing.T) {
	srv := startService(t)
	c := predictor.NewClient(srv.URL, 5*time.Second)

	v := hotDry()
	v.RH = 140

	res, err := c.Predict(context.Background(), v)
	require.NoError(t, err, "service-side failure is not a transport error")
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "RH")
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := predictor.NewClient(url, time.Second)

	err := c.Health(context.Background())
	assert.True(t, errors.Is(err, predictor.ErrUnavailable))

	_, err = c.Predict(context.Background(), hotDry())
	assert.ErrorIs(t, err, predictor.ErrUnavailable)
}

func TestClient_UnhealthyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := predictor.NewClient(srv.URL, time.Second).Health(context.Background())
	assert.ErrorIs(t, err, predictor.ErrUnavailable)
}

func TestClient_ModelNotLoaded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","model_loaded":false}`))
	}))
	defer srv.Close()

	err := predictor.NewClient(srv.URL, time.Second).Health(context.Background())
	assert.ErrorIs(t, err, predictor.ErrUnavailable)
}

func TestClient_ErrorWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	res, err := predictor.NewClient(srv.URL, time.Second).Predict(context.Background(), hotDry())
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "502")
}
