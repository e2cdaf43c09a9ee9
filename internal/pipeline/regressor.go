package pipeline

import (
	"errors"
	"fmt"
)

// Regressor produces a single prediction from a scaled feature vector.
type Regressor interface {
	NumFeatures() int
	Predict(x []float64) (float64, error)
}

const leaf = -1

// TreeRegressor is a fitted binary regression tree in flat array form:
// node i splits on Feature[i] at Threshold[i], going left when
// x[Feature[i]] <= Threshold[i]. Nodes whose ChildrenLeft is -1 are leaves
// and predict Value[i].
type TreeRegressor struct {
	Features      int
	ChildrenLeft  []int
	ChildrenRight []int
	Feature       []int
	Threshold     []float64
	Value         []float64
}

// NewTreeRegressor checks that the arrays describe a well-formed tree over
// nFeatures inputs. Every child index must point forward so traversal always
// terminates.
func NewTreeRegressor(nFeatures int, left, right, feature []int, threshold, value []float64) (*TreeRegressor, error) {
	n := len(left)
	if n == 0 {
		return nil, errors.New("tree has no nodes")
	}
	if nFeatures <= 0 {
		return nil, errors.New("tree has no features")
	}
	if len(right) != n || len(feature) != n || len(threshold) != n || len(value) != n {
		return nil, fmt.Errorf("tree arrays disagree on node count: left=%d right=%d feature=%d threshold=%d value=%d",
			n, len(right), len(feature), len(threshold), len(value))
	}
	for i := range n {
		l, r := left[i], right[i]
		if l == leaf || r == leaf {
			if l != r {
				return nil, fmt.Errorf("node %d has exactly one child", i)
			}
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return nil, fmt.Errorf("node %d has invalid children %d/%d", i, l, r)
		}
		if feature[i] < 0 || feature[i] >= nFeatures {
			return nil, fmt.Errorf("node %d splits on feature %d of %d", i, feature[i], nFeatures)
		}
	}
	return &TreeRegressor{
		Features:      nFeatures,
		ChildrenLeft:  left,
		ChildrenRight: right,
		Feature:       feature,
		Threshold:     threshold,
		Value:         value,
	}, nil
}

func (t *TreeRegressor) NumFeatures() int { return t.Features }

func (t *TreeRegressor) Predict(x []float64) (float64, error) {
	if len(x) != t.Features {
		return 0, fmt.Errorf("tree expects %d features, got %d", t.Features, len(x))
	}
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node], nil
}

// LinearRegressor predicts intercept + coef·x.
type LinearRegressor struct {
	Coef      []float64
	Intercept float64
}

func NewLinearRegressor(coef []float64, intercept float64) (*LinearRegressor, error) {
	if len(coef) == 0 {
		return nil, errors.New("linear model has no coefficients")
	}
	return &LinearRegressor{Coef: append([]float64(nil), coef...), Intercept: intercept}, nil
}

func (l *LinearRegressor) NumFeatures() int { return len(l.Coef) }

func (l *LinearRegressor) Predict(x []float64) (float64, error) {
	if len(x) != len(l.Coef) {
		return 0, fmt.Errorf("linear model expects %d features, got %d", len(l.Coef), len(x))
	}
	y := l.Intercept
	for i, v := range x {
		y += l.Coef[i] * v
	}
	return y, nil
}
