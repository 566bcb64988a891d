// Package metrics exposes Prometheus instrumentation for the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors of the service. A nil *Metrics discards
// observations.
type Metrics struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	predictions     *prometheus.CounterVec
	localeFallbacks prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			}, []string{"path", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			}, []string{"path"},
		),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "predictions_total",
				Help: "Predictions served, by predicted class",
			}, []string{"class"},
		),
		localeFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "locale_fallbacks_total",
				Help: "Requests served from the default locale instead of the requested one",
			},
		),
	}
	reg.MustRegister(m.requestCount, m.requestDuration, m.predictions, m.localeFallbacks)
	return m
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// ObservePrediction counts a prediction of class.
func (m *Metrics) ObservePrediction(class string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(class).Inc()
}

// ObserveLocaleFallback counts a request whose language had no locale file.
func (m *Metrics) ObserveLocaleFallback() {
	if m == nil {
		return
	}
	m.localeFallbacks.Inc()
}
