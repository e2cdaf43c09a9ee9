package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Feature names, in the order the schema documents them.
const (
	FeatureTemperature = "Temperature"
	FeatureRH          = "RH"
	FeatureWs          = "Ws"
	FeatureRain        = "Rain"
	FeatureFFMC        = "FFMC"
	FeatureDMC         = "DMC"
	FeatureDC          = "DC"
	FeatureISI         = "ISI"
	FeatureBUI         = "BUI"
)

// FeatureRange is the inclusive physical range accepted for one feature.
type FeatureRange struct {
	Name string
	Min  float64
	Max  float64
	Unit string
}

// Contains reports whether v lies in [Min, Max]. NaN and infinities never do.
func (r FeatureRange) Contains(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= r.Min && v <= r.Max
}

// Clamp pulls v into [Min, Max]. NaN maps to Min.
func (r FeatureRange) Clamp(v float64) float64 {
	if math.IsNaN(v) || v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

var schema = []FeatureRange{
	{Name: FeatureTemperature, Min: 0, Max: 50, Unit: "°C"},
	{Name: FeatureRH, Min: 0, Max: 100, Unit: "%"},
	{Name: FeatureWs, Min: 0, Max: 80, Unit: "km/h"},
	{Name: FeatureRain, Min: 0, Max: 10, Unit: "mm"},
	{Name: FeatureFFMC, Min: 0, Max: 100},
	{Name: FeatureDMC, Min: 0, Max: 500},
	{Name: FeatureDC, Min: 0, Max: 1000},
	{Name: FeatureISI, Min: 0, Max: 50},
	{Name: FeatureBUI, Min: 0, Max: 100},
}

// Schema returns a copy of the feature ranges in canonical order.
func Schema() []FeatureRange {
	out := make([]FeatureRange, len(schema))
	copy(out, schema)
	return out
}

// FeatureNames returns the canonical feature names.
func FeatureNames() []string {
	names := make([]string, len(schema))
	for i, r := range schema {
		names[i] = r.Name
	}
	return names
}

// LookupFeature returns the range for a feature name.
func LookupFeature(name string) (FeatureRange, bool) {
	for _, r := range schema {
		if r.Name == name {
			return r, true
		}
	}
	return FeatureRange{}, false
}

// FindFeature is LookupFeature ignoring case, for operator-typed names.
func FindFeature(name string) (FeatureRange, bool) {
	for _, r := range schema {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return FeatureRange{}, false
}

// FeatureVector is a validated set of model inputs.
type FeatureVector struct {
	Temperature float64 `json:"Temperature"`
	RH          float64 `json:"RH"`
	Ws          float64 `json:"Ws"`
	Rain        float64 `json:"Rain"`
	FFMC        float64 `json:"FFMC"`
	DMC         float64 `json:"DMC"`
	DC          float64 `json:"DC"`
	ISI         float64 `json:"ISI"`
	BUI         float64 `json:"BUI"`
}

// Get returns the value of the named feature.
func (v FeatureVector) Get(name string) (float64, bool) {
	switch name {
	case FeatureTemperature:
		return v.Temperature, true
	case FeatureRH:
		return v.RH, true
	case FeatureWs:
		return v.Ws, true
	case FeatureRain:
		return v.Rain, true
	case FeatureFFMC:
		return v.FFMC, true
	case FeatureDMC:
		return v.DMC, true
	case FeatureDC:
		return v.DC, true
	case FeatureISI:
		return v.ISI, true
	case FeatureBUI:
		return v.BUI, true
	}
	return 0, false
}

// With returns a copy of v with the named feature set.
func (v FeatureVector) With(name string, value float64) (FeatureVector, error) {
	switch name {
	case FeatureTemperature:
		v.Temperature = value
	case FeatureRH:
		v.RH = value
	case FeatureWs:
		v.Ws = value
	case FeatureRain:
		v.Rain = value
	case FeatureFFMC:
		v.FFMC = value
	case FeatureDMC:
		v.DMC = value
	case FeatureDC:
		v.DC = value
	case FeatureISI:
		v.ISI = value
	case FeatureBUI:
		v.BUI = value
	default:
		return v, fmt.Errorf("unknown feature %q", name)
	}
	return v, nil
}

// Ordered arranges the vector's values in the given feature order.
func (v FeatureVector) Ordered(order []string) ([]float64, error) {
	out := make([]float64, len(order))
	for i, name := range order {
		val, ok := v.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown feature %q in order", name)
		}
		out[i] = val
	}
	return out, nil
}

// Raw converts the vector back into the loose payload form.
func (v FeatureVector) Raw() RawFeatures {
	raw := make(RawFeatures, len(schema))
	for _, r := range schema {
		val, _ := v.Get(r.Name)
		raw[r.Name] = val
	}
	return raw
}

// RawFeatures is an unvalidated payload keyed by feature name. Absent keys
// are missing features.
type RawFeatures map[string]float64

// DecodeRawFeatures parses a JSON object of feature values. Unknown keys are
// ignored; null values count as missing.
func DecodeRawFeatures(data []byte) (RawFeatures, error) {
	var fields map[string]*float64
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	raw := make(RawFeatures, len(fields))
	for k, v := range fields {
		if v != nil {
			raw[k] = *v
		}
	}
	return raw, nil
}

// FieldError describes one rejected feature.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError lists every feature that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "invalid features: " + strings.Join(parts, "; ")
}

// Validate checks that every schema feature is present and within range.
func Validate(raw RawFeatures) (FeatureVector, error) {
	var (
		v    FeatureVector
		errs []FieldError
	)
	for _, r := range schema {
		val, ok := raw[r.Name]
		if !ok {
			errs = append(errs, FieldError{Field: r.Name, Reason: "missing"})
			continue
		}
		if !r.Contains(val) {
			errs = append(errs, FieldError{
				Field:  r.Name,
				Reason: fmt.Sprintf("%g outside [%g, %g]", val, r.Min, r.Max),
			})
			continue
		}
		v, _ = v.With(r.Name, val)
	}
	if len(errs) > 0 {
		return FeatureVector{}, &ValidationError{Fields: errs}
	}
	return v, nil
}
