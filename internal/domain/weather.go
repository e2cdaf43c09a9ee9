package domain

import "time"

// msToKmh converts provider wind speed (m/s) to the schema's km/h.
const msToKmh = 3.6

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DefaultCoordinate is where a new session's map starts (Algiers).
var DefaultCoordinate = Coordinate{Lat: 36.75, Lon: 3.04}

// WeatherPayload holds current conditions from the live weather provider.
// Pointer fields are nil when the provider omitted them.
type WeatherPayload struct {
	Temperature      *float64  // °C
	RelativeHumidity *float64  // %
	WindSpeed        *float64  // m/s
	Precipitation    *float64  // mm
	ObservedAt       time.Time // provider time, zero if unknown
}

// Empty reports whether the payload carries no readings at all.
func (w WeatherPayload) Empty() bool {
	return w.Temperature == nil && w.RelativeHumidity == nil && w.WindSpeed == nil && w.Precipitation == nil
}

// DefaultFireIndices are the fire-index inputs used when only live weather is known.
var DefaultFireIndices = FeatureVector{FFMC: 85, DMC: 20, DC: 100, ISI: 8, BUI: 25}

// Features builds a model input from live weather. Missing readings fall back
// to 25 °C, 60 %, 5 m/s and 0 mm; fire indices come from indices. Every value
// is clamped into its schema range.
func (w WeatherPayload) Features(indices FeatureVector) FeatureVector {
	v := indices
	v.Temperature = valueOr(w.Temperature, 25)
	v.RH = valueOr(w.RelativeHumidity, 60)
	v.Ws = valueOr(w.WindSpeed, 5) * msToKmh
	v.Rain = valueOr(w.Precipitation, 0)

	for _, r := range schema {
		val, _ := v.Get(r.Name)
		v, _ = v.With(r.Name, r.Clamp(val))
	}
	return v
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
