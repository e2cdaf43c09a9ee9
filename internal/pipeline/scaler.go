package pipeline

import (
	"errors"
	"fmt"
)

// Scaler transforms an ordered feature vector into the space the regressor
// was fitted in.
type Scaler interface {
	NumFeatures() int
	Transform(x []float64) ([]float64, error)
}

// StandardScaler applies z-score standardization using fitted per-feature
// mean and scale (standard deviation).
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// NewStandardScaler validates fitted parameters. A zero scale is treated as 1
// so constant training features pass through centred.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, errors.New("standard scaler has no features")
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("standard scaler mean has %d values, scale has %d", len(mean), len(scale))
	}
	s := &StandardScaler{Mean: append([]float64(nil), mean...), Scale: append([]float64(nil), scale...)}
	for i := range s.Scale {
		if s.Scale[i] == 0 {
			s.Scale[i] = 1
		}
	}
	return s, nil
}

func (s *StandardScaler) NumFeatures() int { return len(s.Mean) }

// Transform returns (x - mean) / scale.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// MinMaxScaler maps each feature linearly using fitted min offset and scale,
// matching x*scale + min. Values outside the training range are not clipped.
type MinMaxScaler struct {
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`
}

// NewMinMaxScaler validates fitted parameters.
func NewMinMaxScaler(min, scale []float64) (*MinMaxScaler, error) {
	if len(min) == 0 {
		return nil, errors.New("minmax scaler has no features")
	}
	if len(min) != len(scale) {
		return nil, fmt.Errorf("minmax scaler min has %d values, scale has %d", len(min), len(scale))
	}
	return &MinMaxScaler{Min: append([]float64(nil), min...), Scale: append([]float64(nil), scale...)}, nil
}

func (s *MinMaxScaler) NumFeatures() int { return len(s.Min) }

func (s *MinMaxScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Min) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Min), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v*s.Scale[i] + s.Min[i]
	}
	return out, nil
}
