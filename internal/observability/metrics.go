package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fwi_api"

// Metrics holds the Prometheus collectors for the prediction service.
type Metrics struct {
	Predictions        *prometheus.CounterVec // labels: outcome={success,validation_error,computation_error,internal_error}
	PredictionDuration prometheus.Histogram
	PredictedFWI       prometheus.Histogram
	ModelReady         prometheus.Gauge

	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	// Sinks.
	RecorderFailures *prometheus.CounterVec // labels: sink={history,events}
	EventsPublished  prometheus.Counter

	// Remote model backend.
	RemoteRequests *prometheus.CounterVec // labels: outcome={success,rejected,error}
	RemoteDuration prometheus.Histogram

	HTTPRequests *prometheus.CounterVec // labels: method, status
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so tests
// can build as many as they need without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"outcome"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time from request body to model result.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		PredictedFWI: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "predicted_fwi",
			Help:      "Distribution of returned Fire Weather Index values.",
			Buckets:   []float64{0, 1, 2.5, 5, 10, 15, 20, 30, 50},
		}),
		ModelReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_ready",
			Help:      "1 when a model is loaded and serving, 0 otherwise.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_cache_total",
			Help:      "Prediction cache lookups by result.",
		}, []string{"result"}),
		RecorderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recorder_failures_total",
			Help:      "Predictions a sink failed to record, by sink.",
		}, []string{"sink"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Prediction events delivered to Kafka.",
		}),
		RemoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_model_requests_total",
			Help:      "Remote model backend requests by outcome.",
		}, []string{"outcome"}),
		RemoteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_model_duration_seconds",
			Help:      "Remote model backend request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Predictions,
		m.PredictionDuration,
		m.PredictedFWI,
		m.ModelReady,
		m.CacheLookups,
		m.RecorderFailures,
		m.EventsPublished,
		m.RemoteRequests,
		m.RemoteDuration,
		m.HTTPRequests,
	}
}
