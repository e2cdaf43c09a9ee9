package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names inside the model directory.
const (
	FeatureOrderFile = "feature_order.json"
	ScalerFile       = "scaler.json"
	ModelFile        = "model.json"
)

// ErrArtifactMismatch is returned when the loaded artifacts disagree on the
// number or order of features.
var ErrArtifactMismatch = errors.New("artifact mismatch")

// ScalerArtifact is the serialized form of a fitted scaler.
type ScalerArtifact struct {
	Kind  string    `json:"kind"` // "standard" or "minmax"
	Mean  []float64 `json:"mean,omitempty"`
	Min   []float64 `json:"min,omitempty"`
	Scale []float64 `json:"scale"`
}

// ModelArtifact is the serialized form of a fitted regressor.
type ModelArtifact struct {
	Kind      string `json:"kind"` // "tree" or "linear"
	NFeatures int    `json:"n_features"`

	ChildrenLeft  []int     `json:"children_left,omitempty"`
	ChildrenRight []int     `json:"children_right,omitempty"`
	Feature       []int     `json:"feature,omitempty"`
	Threshold     []float64 `json:"threshold,omitempty"`
	Value         []float64 `json:"value,omitempty"`

	Coef      []float64 `json:"coef,omitempty"`
	Intercept float64   `json:"intercept,omitempty"`
}

// Load reads the three artifacts from dir and assembles a Pipeline. Any
// read, decode, or consistency failure is returned; callers treat it as fatal.
func Load(dir string) (*Pipeline, error) {
	var order []string
	if err := readJSON(filepath.Join(dir, FeatureOrderFile), &order); err != nil {
		return nil, err
	}

	var sa ScalerArtifact
	if err := readJSON(filepath.Join(dir, ScalerFile), &sa); err != nil {
		return nil, err
	}
	scaler, err := sa.Build()
	if err != nil {
		return nil, fmt.Errorf("build scaler: %w", err)
	}

	var ma ModelArtifact
	if err := readJSON(filepath.Join(dir, ModelFile), &ma); err != nil {
		return nil, err
	}
	model, err := ma.Build()
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}

	return New(order, scaler, model)
}

// Build constructs the scaler described by the artifact.
func (a ScalerArtifact) Build() (Scaler, error) {
	switch a.Kind {
	case "standard", "":
		return NewStandardScaler(a.Mean, a.Scale)
	case "minmax":
		return NewMinMaxScaler(a.Min, a.Scale)
	default:
		return nil, fmt.Errorf("unknown scaler kind %q", a.Kind)
	}
}

// Build constructs the regressor described by the artifact.
func (a ModelArtifact) Build() (Regressor, error) {
	switch a.Kind {
	case "tree":
		return NewTreeRegressor(a.NFeatures, a.ChildrenLeft, a.ChildrenRight, a.Feature, a.Threshold, a.Value)
	case "linear":
		m, err := NewLinearRegressor(a.Coef, a.Intercept)
		if err != nil {
			return nil, err
		}
		if a.NFeatures != 0 && a.NFeatures != len(a.Coef) {
			return nil, fmt.Errorf("%w: linear model declares %d features but has %d coefficients",
				ErrArtifactMismatch, a.NFeatures, len(a.Coef))
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", a.Kind)
	}
}

// WriteArtifacts writes a consistent artifact set to dir.
func WriteArtifacts(dir string, order []string, sa ScalerArtifact, ma ModelArtifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	files := []struct {
		name string
		v    any
	}{
		{FeatureOrderFile, order},
		{ScalerFile, sa},
		{ModelFile, ma},
	}
	for _, f := range files {
		data, err := json.MarshalIndent(f.v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
