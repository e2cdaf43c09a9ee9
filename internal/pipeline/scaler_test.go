package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardScaler_Transform(t *testing.T) {
	s, err := NewStandardScaler([]float64{10, 0}, []float64{2, 0})
	require.NoError(t, err)

	out, err := s.Transform([]float64{14, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, out, "zero scale passes through centred")

	_, err = s.Transform([]float64{1})
	assert.Error(t, err)
}

func TestStandardScaler_Invalid(t *testing.T) {
	_, err := NewStandardScaler(nil, nil)
	assert.Error(t, err)
	_, err = NewStandardScaler([]float64{1, 2}, []float64{1})
	assert.Error(t, err)
}

func TestMinMaxScaler_Transform(t *testing.T) {
	s, err := NewMinMaxScaler([]float64{-1, 0}, []float64{0.1, 0.5})
	require.NoError(t, err)

	out, err := s.Transform([]float64{20, 4})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2}, out, 1e-9)
}

func TestTreeRegressor_Structure(t *testing.T) {
	_, err := NewTreeRegressor(1, []int{1, -1}, []int{-1, -1}, []int{0, -2}, []float64{0, 0}, []float64{0, 1})
	assert.Error(t, err, "single child")

	_, err = NewTreeRegressor(1, []int{0, -1, -1}, []int{2, -1, -1}, []int{0, -2, -2}, []float64{0, 0, 0}, []float64{0, 1, 2})
	assert.Error(t, err, "self loop")

	_, err = NewTreeRegressor(1, []int{1, -1, -1}, []int{2, -1, -1}, []int{3, -2, -2}, []float64{0, 0, 0}, []float64{0, 1, 2})
	assert.Error(t, err, "feature out of range")

	_, err = NewTreeRegressor(1, []int{1, -1}, []int{2, -1}, []int{0}, []float64{0, 0}, []float64{0, 1})
	assert.Error(t, err, "array lengths")
}

func TestTreeRegressor_Predict(t *testing.T) {
	tree, err := NewTreeRegressor(1, []int{1, -1, -1}, []int{2, -1, -1}, []int{0, -2, -2}, []float64{0.5, 0, 0}, []float64{0, 10, 20})
	require.NoError(t, err)

	y, err := tree.Predict([]float64{0.5})
	require.NoError(t, err)
	assert.Equal(t, 10.0, y, "threshold goes left")

	y, err = tree.Predict([]float64{0.6})
	require.NoError(t, err)
	assert.Equal(t, 20.0, y)

	_, err = tree.Predict([]float64{1, 2})
	assert.Error(t, err)
}

func TestDemoArtifacts_Consistent(t *testing.T) {
	order, sa, ma := DemoArtifacts()
	scaler, err := sa.Build()
	require.NoError(t, err)
	model, err := ma.Build()
	require.NoError(t, err)
	_, err = New(order, scaler, model)
	require.NoError(t, err)
}

func TestArtifactBuild_UnknownKinds(t *testing.T) {
	_, err := ScalerArtifact{Kind: "robust"}.Build()
	assert.Error(t, err)
	_, err = ModelArtifact{Kind: "forest"}.Build()
	assert.Error(t, err)
	_, err = ModelArtifact{Kind: "linear", NFeatures: 3, Coef: []float64{1, 2}}.Build()
	assert.ErrorIs(t, err, ErrArtifactMismatch)
}
