package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()
	a.Predictions.WithLabelValues("success").Inc()

	assert.NotSame(t, a.Predictions, b.Predictions)
	assert.InDelta(t, 1, testutil.ToFloat64(a.Predictions.WithLabelValues("success")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.Predictions.WithLabelValues("success")), 0)
}
