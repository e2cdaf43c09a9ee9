package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// prediction service and the live weather cache.
type Metrics struct {
	Predictions        *prometheus.CounterVec // labels: outcome={success,validation,malformed,pipeline}
	PredictionDuration prometheus.Histogram
	ModelLoaded        prometheus.Gauge

	// Live weather metrics.
	WeatherCache         *prometheus.CounterVec // labels: result={hit,miss}
	WeatherFetches       *prometheus.CounterVec // labels: outcome={success,error}
	WeatherFetchDuration prometheus.Histogram

	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Predictions,
		m.PredictionDuration,
		m.ModelLoaded,
		m.WeatherCache,
		m.WeatherFetches,
		m.WeatherFetchDuration,
		m.EventsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fwi",
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"outcome"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fwi",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent validating, scaling and regressing one request.",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fwi",
			Name:      "model_loaded",
			Help:      "1 when the scaler and regressor are loaded, 0 otherwise.",
		}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fwi",
			Name:      "weather_cache_total",
			Help:      "Live weather cache lookups by result.",
		}, []string{"result"}),
		WeatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fwi",
			Name:      "weather_fetches_total",
			Help:      "Live weather provider requests by outcome.",
		}, []string{"outcome"}),
		WeatherFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fwi",
			Name:      "weather_fetch_duration_seconds",
			Help:      "Live weather provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fwi",
			Name:      "prediction_events_total",
			Help:      "Prediction events published to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}
