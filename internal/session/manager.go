// Package session holds one operator's interactive state and drives the
// predict flow against the prediction service.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/fire-weather-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrBusy is returned when a predict is requested while one is in flight.
	ErrBusy = errors.New("a prediction is already in flight")
	// ErrNoWeather is returned when live weather could not be fetched.
	ErrNoWeather = errors.New("live weather unavailable")
)

// Predictor sends a feature vector to the prediction service.
type Predictor interface {
	Predict(ctx context.Context, v domain.FeatureVector) (domain.PredictionResult, error)
}

// WeatherSource returns live weather; an empty payload means none was available.
type WeatherSource interface {
	GetWeather(ctx context.Context, lat, lon float64) domain.WeatherPayload
}

// Manager owns a session's State. It serializes predict calls so at most one
// is outstanding at a time.
type Manager struct {
	mu        sync.Mutex
	state     *State
	inFlight  atomic.Bool
	predictor Predictor
	weather   WeatherSource
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewManager creates a Manager with a fresh State.
func NewManager(predictor Predictor, weather WeatherSource, clock clockwork.Clock, logger *slog.Logger) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	st := NewState()
	return &Manager{
		state:     st,
		predictor: predictor,
		weather:   weather,
		clock:     clock,
		logger:    logger.With("session_id", st.ID),
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// RecordPrediction folds a result into counters and history at the current time.
func (m *Manager) RecordPrediction(result domain.PredictionResult, inputTemperature float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.RecordPrediction(result, inputTemperature, m.clock.Now())
}

// SetCoordinate records a map selection. It does not trigger a prediction.
func (m *Manager) SetCoordinate(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("coordinate %.4f,%.4f out of range", lat, lon)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastCoordinate = domain.Coordinate{Lat: lat, Lon: lon}
	return nil
}

// SetInputs replaces the current feature inputs.
func (m *Manager) SetInputs(v domain.FeatureVector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Inputs = v
}

// SetFeature changes one input.
func (m *Manager) SetFeature(name string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, err := m.state.Inputs.With(name, value)
	if err != nil {
		return err
	}
	m.state.Inputs = v
	return nil
}

// ApplyScenario loads a named quick scenario into the inputs.
func (m *Manager) ApplyScenario(name string) error {
	v, err := Scenario(name)
	if err != nil {
		return err
	}
	m.SetInputs(v)
	return nil
}

// SetAutoPredict turns continuous prediction on or off.
func (m *Manager) SetAutoPredict(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.AutoPredict = enabled
}

// Predict runs the predict flow on the current inputs. A failed request is
// reported in the result and leaves counters untouched; the returned error
// is non-nil only when the service could not be reached or a predict is
// already in flight.
func (m *Manager) Predict(ctx context.Context) (domain.PredictionResult, error) {
	m.mu.Lock()
	inputs := m.state.Inputs
	m.mu.Unlock()
	return m.predictWith(ctx, inputs, true)
}

// AutoPredictTick predicts when auto-predict is on and nothing is in flight.
// It reports whether a prediction ran.
func (m *Manager) AutoPredictTick(ctx context.Context) (domain.PredictionResult, bool, error) {
	m.mu.Lock()
	enabled := m.state.AutoPredict
	m.mu.Unlock()
	if !enabled {
		return domain.PredictionResult{}, false, nil
	}
	res, err := m.Predict(ctx)
	if errors.Is(err, ErrBusy) {
		return domain.PredictionResult{}, false, nil
	}
	return res, true, err
}

// Run calls AutoPredictTick on every trigger until ctx is cancelled or the
// trigger closes. The trigger decides the refresh policy: a ticker for
// timer-driven refresh, or a channel fed by input changes. onResult, if set,
// receives every completed result. Run stops with the error when the
// predictor fails outright, e.g. the service is unreachable.
func (m *Manager) Run(ctx context.Context, trigger <-chan time.Time, onResult func(domain.PredictionResult)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-trigger:
			if !ok {
				return nil
			}
			res, ran, err := m.AutoPredictTick(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				m.logger.Warn("auto-predict failed", "error", err)
				return fmt.Errorf("auto-predict: %w", err)
			}
			if ran && onResult != nil {
				onResult(res)
			}
		}
	}
}

// LiveWeatherPredict fetches weather at the last coordinate and predicts
// with it, using the default fire indices. The result is for display only:
// inputs, counters and history are not changed.
func (m *Manager) LiveWeatherPredict(ctx context.Context) (domain.WeatherPayload, domain.PredictionResult, error) {
	m.mu.Lock()
	coord := m.state.LastCoordinate
	m.mu.Unlock()

	w := m.weather.GetWeather(ctx, coord.Lat, coord.Lon)
	if w.Empty() {
		return w, domain.PredictionResult{}, ErrNoWeather
	}
	res, err := m.predictWith(ctx, w.Features(domain.DefaultFireIndices), false)
	return w, res, err
}

// predictWith runs Validating then Predicting under the in-flight guard.
// Only recorded predictions reach counters, history and the last outcome.
func (m *Manager) predictWith(ctx context.Context, v domain.FeatureVector, record bool) (domain.PredictionResult, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return domain.PredictionResult{}, ErrBusy
	}
	defer m.inFlight.Store(false)

	m.setPhase(PhaseValidating)
	if _, err := domain.Validate(v.Raw()); err != nil {
		res := domain.Failure(err)
		m.finish(res, v, record)
		return res, nil
	}

	m.setPhase(PhasePredicting)
	res, err := m.predictor.Predict(ctx, v)
	if err != nil {
		m.finish(domain.Failure(err), v, record)
		return domain.Failure(err), err
	}
	m.finish(res, v, record)
	return res, nil
}

func (m *Manager) setPhase(p Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Phase = p
}

// finish records the outcome and returns the session to idle.
func (m *Manager) finish(res domain.PredictionResult, v domain.FeatureVector, record bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Phase = PhaseIdle
	if !record {
		m.logger.Debug("display-only prediction", "ok", res.OK(), "fwi", res.Value)
		return
	}
	if res.OK() {
		m.state.RecordPrediction(res, v.Temperature, m.clock.Now())
		m.state.LastOutcome = PhaseRecorded
		m.state.LastError = ""
		m.logger.Debug("prediction recorded", "fwi", res.Value, "predictions", m.state.PredictionsMade)
	} else {
		m.state.LastOutcome = PhaseFailed
		m.state.LastError = res.Message
		m.logger.Info("prediction failed", "error", res.Message)
	}
}
