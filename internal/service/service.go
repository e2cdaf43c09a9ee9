// Package service implements the prediction service contract: health,
// metadata, and predict over a loaded scaling/inference pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/fire-weather-service/internal/domain"
	"github.com/couchcryptid/fire-weather-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Model is the loaded scaling/inference pipeline.
type Model interface {
	Predict(v domain.FeatureVector) (float64, error)
	FeatureOrder() []string
}

// PredictionSink receives every successful prediction.
type PredictionSink interface {
	Publish(ctx context.Context, event domain.PredictionEvent) error
}

// HealthStatus is the body of the health operation.
type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Metadata describes what the service expects.
type Metadata struct {
	Message          string   `json:"message"`
	FeaturesRequired []string `json:"features_required"`
}

// Failure kinds, used as the metrics outcome label.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeMalformed  = "malformed"
	OutcomePipeline   = "pipeline"
)

// Service handles prediction requests. It holds no per-request state.
type Service struct {
	model   Model
	sink    PredictionSink
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithSink publishes successful predictions to sink.
func WithSink(sink PredictionSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithClock overrides the clock used to timestamp events.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// New creates a Service over a loaded model.
func New(model Model, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		model:   model,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	if model != nil {
		metrics.ModelLoaded.Set(1)
	}
	return s
}

// Health reports the service as healthy; ModelLoaded is true once artifacts are in.
func (s *Service) Health() HealthStatus {
	return HealthStatus{Status: "healthy", ModelLoaded: s.model != nil}
}

// Metadata lists the features a predict payload must carry, in model order.
func (s *Service) Metadata() Metadata {
	md := Metadata{Message: "FWI Predictor API running!"}
	if s.model != nil {
		md.FeaturesRequired = s.model.FeatureOrder()
	}
	return md
}

// Predict decodes a JSON payload and runs it through the model.
func (s *Service) Predict(ctx context.Context, payload []byte) domain.PredictionResult {
	raw, err := domain.DecodeRawFeatures(payload)
	if err != nil {
		s.logger.Warn("malformed predict payload", "error", err, "payload", string(payload))
		s.metrics.Predictions.WithLabelValues(OutcomeMalformed).Inc()
		return domain.Failure(fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err))
	}
	return s.predictFeatures(ctx, raw)
}

// predictFeatures validates raw features and runs the model. Failures never
// escape as panics; they come back as failed results.
func (s *Service) predictFeatures(ctx context.Context, raw domain.RawFeatures) domain.PredictionResult {
	timer := s.clock.Now()
	defer func() {
		s.metrics.PredictionDuration.Observe(s.clock.Since(timer).Seconds())
	}()

	v, err := domain.Validate(raw)
	if err != nil {
		s.logger.Info("rejected predict payload", "error", err)
		s.metrics.Predictions.WithLabelValues(OutcomeValidation).Inc()
		return domain.Failure(err)
	}

	if s.model == nil {
		s.metrics.Predictions.WithLabelValues(OutcomePipeline).Inc()
		return domain.Failure(fmt.Errorf("%w: model not loaded", domain.ErrPipeline))
	}

	fwi, err := s.infer(v)
	if err != nil {
		s.logger.Error("prediction failed", "error", err, "payload", v)
		s.metrics.Predictions.WithLabelValues(OutcomePipeline).Inc()
		return domain.Failure(err)
	}

	s.logger.Debug("prediction", "features", v, "fwi", fwi)
	s.metrics.Predictions.WithLabelValues(OutcomeSuccess).Inc()
	s.publish(ctx, v, fwi)
	return domain.Success(fwi)
}

func (s *Service) infer(v domain.FeatureVector) (fwi float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrPipeline, r)
		}
	}()
	return s.model.Predict(v)
}

func (s *Service) publish(ctx context.Context, v domain.FeatureVector, fwi float64) {
	if s.sink == nil {
		return
	}
	event := domain.PredictionEvent{
		ID:          uuid.NewString(),
		Features:    v,
		FWI:         fwi,
		PredictedAt: s.clock.Now().UTC(),
	}
	if err := s.sink.Publish(ctx, event); err != nil {
		s.logger.Warn("publish prediction event failed", "error", err, "event_id", event.ID)
	}
}

// Outcome classifies a failed result for logging and metrics.
func Outcome(r domain.PredictionResult) string {
	var verr *domain.ValidationError
	switch {
	case r.OK():
		return OutcomeSuccess
	case errors.As(r.Err, &verr):
		return OutcomeValidation
	case errors.Is(r.Err, domain.ErrMalformedPayload):
		return OutcomeMalformed
	default:
		return OutcomePipeline
	}
}
