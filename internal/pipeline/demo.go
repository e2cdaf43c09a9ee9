package pipeline

import "github.com/couchcryptid/fire-weather-service/internal/domain"

// Feature statistics from the Algerian Forest Fires dataset, in schema order.
var (
	demoMean  = []float64{32.17, 61.94, 15.50, 0.76, 77.89, 14.67, 49.43, 4.77, 16.66}
	demoScale = []float64{3.63, 14.88, 2.81, 2.00, 14.34, 12.37, 47.66, 4.17, 14.20}
)

type demoSplit struct {
	feature string
	raw     float64
	left    int
	right   int
}

// DemoArtifacts returns a small, internally consistent standard scaler and
// regression tree over the schema order. It stands in for a fitted model in
// local runs and tests.
func DemoArtifacts() ([]string, ScalerArtifact, ModelArtifact) {
	order := domain.FeatureNames()
	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}

	splits := map[int]demoSplit{
		0:  {domain.FeatureISI, 3, 1, 2},
		1:  {domain.FeatureBUI, 10, 3, 4},
		2:  {domain.FeatureISI, 8, 5, 6},
		5:  {domain.FeatureBUI, 20, 7, 8},
		6:  {domain.FeatureTemperature, 35, 9, 10},
		9:  {domain.FeatureBUI, 25, 11, 12},
		10: {domain.FeatureBUI, 25, 13, 14},
	}
	leaves := map[int]float64{
		3: 1.2, 4: 3.5, 7: 7.8, 8: 12.4, 11: 16.9, 12: 24.6, 13: 21.3, 14: 31.8,
	}

	const nodes = 15
	ma := ModelArtifact{
		Kind:          "tree",
		NFeatures:     len(order),
		ChildrenLeft:  make([]int, nodes),
		ChildrenRight: make([]int, nodes),
		Feature:       make([]int, nodes),
		Threshold:     make([]float64, nodes),
		Value:         make([]float64, nodes),
	}
	for i := range nodes {
		if s, ok := splits[i]; ok {
			f := index[s.feature]
			ma.ChildrenLeft[i] = s.left
			ma.ChildrenRight[i] = s.right
			ma.Feature[i] = f
			ma.Threshold[i] = (s.raw - demoMean[f]) / demoScale[f]
			continue
		}
		ma.ChildrenLeft[i] = leaf
		ma.ChildrenRight[i] = leaf
		ma.Feature[i] = -2
		ma.Value[i] = leaves[i]
	}

	sa := ScalerArtifact{
		Kind:  "standard",
		Mean:  append([]float64(nil), demoMean...),
		Scale: append([]float64(nil), demoScale...),
	}
	return order, sa, ma
}
