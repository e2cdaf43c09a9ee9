package session

import (
	"slices"
	"time"

	"github.com/couchcryptid/fire-weather-service/internal/domain"
	"github.com/google/uuid"
)

// HistoryLimit is how many recorded predictions a session keeps.
const HistoryLimit = 8

// Phase is where a session is in its predict flow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhasePredicting
	PhaseRecorded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhasePredicting:
		return "predicting"
	case PhaseRecorded:
		return "recorded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// HistoryEntry is one recorded prediction.
type HistoryEntry struct {
	Timestamp   time.Time
	FWI         float64
	Temperature float64
}

// State is everything one interactive session knows. It is owned by a
// single Manager and handed out only as copies.
type State struct {
	ID              string
	PredictionsMade int
	PeakFWI         float64
	History         []HistoryEntry
	LastCoordinate  domain.Coordinate
	AutoPredict     bool
	Inputs          domain.FeatureVector

	Phase       Phase
	LastOutcome Phase // PhaseRecorded or PhaseFailed once anything ran
	LastFWI     float64
	LastError   string
}

// NewState returns a fresh session at the default coordinate with the
// "Custom" scenario loaded.
func NewState() *State {
	inputs, _ := Scenario(ScenarioCustom)
	return &State{
		ID:             uuid.NewString(),
		LastCoordinate: domain.DefaultCoordinate,
		Inputs:         inputs,
	}
}

// RecordPrediction folds a successful result into the counters and history.
// Failed results leave the state untouched.
func (s *State) RecordPrediction(result domain.PredictionResult, inputTemperature float64, at time.Time) {
	if !result.OK() {
		return
	}
	s.PredictionsMade++
	s.PeakFWI = max(s.PeakFWI, result.Value)
	s.LastFWI = result.Value
	s.History = append(s.History, HistoryEntry{Timestamp: at, FWI: result.Value, Temperature: inputTemperature})
	if n := len(s.History); n > HistoryLimit {
		s.History = slices.Clone(s.History[n-HistoryLimit:])
	}
}

// Clone returns a deep copy.
func (s *State) Clone() State {
	c := *s
	c.History = slices.Clone(s.History)
	return c
}
