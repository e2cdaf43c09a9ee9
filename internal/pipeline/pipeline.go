package pipeline

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/fire-weather-service/internal/domain"
)

// Pipeline reorders, scales, and regresses a feature vector. All state is
// read-only after New returns, so a Pipeline is safe for concurrent use.
type Pipeline struct {
	order  []string
	scaler Scaler
	model  Regressor
}

// New checks that the feature order, scaler, and regressor agree and returns
// a ready Pipeline. Disagreement wraps ErrArtifactMismatch.
func New(order []string, scaler Scaler, model Regressor) (*Pipeline, error) {
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	if scaler.NumFeatures() != len(order) {
		return nil, fmt.Errorf("%w: scaler expects %d features, feature order has %d",
			ErrArtifactMismatch, scaler.NumFeatures(), len(order))
	}
	if model.NumFeatures() != scaler.NumFeatures() {
		return nil, fmt.Errorf("%w: model expects %d features, scaler produces %d",
			ErrArtifactMismatch, model.NumFeatures(), scaler.NumFeatures())
	}

	p := &Pipeline{order: slices.Clone(order), scaler: scaler, model: model}

	// Predict once with mid-range inputs so a broken artifact fails at startup.
	if _, err := p.Predict(warmupVector()); err != nil {
		return nil, fmt.Errorf("warm-up prediction: %w", err)
	}
	return p, nil
}

// FeatureOrder returns the order the artifacts were fitted with.
func (p *Pipeline) FeatureOrder() []string {
	return slices.Clone(p.order)
}

// Predict returns the model output for a validated vector.
func (p *Pipeline) Predict(v domain.FeatureVector) (float64, error) {
	x, err := v.Ordered(p.order)
	if err != nil {
		return 0, fmt.Errorf("%w: reorder: %v", domain.ErrPipeline, err)
	}
	scaled, err := p.scaler.Transform(x)
	if err != nil {
		return 0, fmt.Errorf("%w: scale: %v", domain.ErrPipeline, err)
	}
	y, err := p.model.Predict(scaled)
	if err != nil {
		return 0, fmt.Errorf("%w: regress: %v", domain.ErrPipeline, err)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("%w: non-finite prediction %v", domain.ErrPipeline, y)
	}
	return y, nil
}

// CheckReadiness reports the pipeline as ready; a Pipeline only exists once
// its artifacts have loaded and agreed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	return nil
}

func checkOrder(order []string) error {
	want := domain.FeatureNames()
	if len(order) != len(want) {
		return fmt.Errorf("%w: feature order has %d names, schema has %d", ErrArtifactMismatch, len(order), len(want))
	}
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		if _, ok := domain.LookupFeature(name); !ok {
			return fmt.Errorf("%w: unknown feature %q in order", ErrArtifactMismatch, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate feature %q in order", ErrArtifactMismatch, name)
		}
		seen[name] = true
	}
	return nil
}

func warmupVector() domain.FeatureVector {
	var v domain.FeatureVector
	for _, r := range domain.Schema() {
		v, _ = v.With(r.Name, (r.Min+r.Max)/2)
	}
	return v
}
