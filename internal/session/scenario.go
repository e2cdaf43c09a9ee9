package session

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/fire-weather-service/internal/domain"
)

// Quick scenarios an operator can load instead of setting every input.
const (
	ScenarioCustom = "Custom"
	ScenarioHotDry = "Hot&Dry"
	ScenarioCool   = "Cool"
	ScenarioWindy  = "Windy"
)

// weather inputs per scenario: Temperature, RH, Ws, Rain.
var scenarios = map[string][4]float64{
	ScenarioCustom: {28.0, 45.0, 15.0, 0.0},
	ScenarioHotDry: {38.0, 15.0, 25.0, 0.0},
	ScenarioCool:   {18.0, 85.0, 8.0, 3.2},
	ScenarioWindy:  {32.0, 30.0, 35.0, 0.0},
}

// ScenarioNames lists the scenarios in menu order.
func ScenarioNames() []string {
	return []string{ScenarioCustom, ScenarioHotDry, ScenarioCool, ScenarioWindy}
}

// Scenario returns the full input vector for a named scenario, with the
// default fire indices. Names match case-insensitively.
func Scenario(name string) (domain.FeatureVector, error) {
	for key, w := range scenarios {
		if strings.EqualFold(key, name) {
			v := domain.DefaultFireIndices
			v.Temperature, v.RH, v.Ws, v.Rain = w[0], w[1], w[2], w[3]
			return v, nil
		}
	}
	return domain.FeatureVector{}, fmt.Errorf("unknown scenario %q", name)
}
