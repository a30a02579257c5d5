package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the server's Prometheus collectors.
type metrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	states   prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		// Labels: "ok", "bad_request", "degenerate", "unavailable"
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "profiler_requests_total",
			Help: "Profile requests by result",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "profiler_generate_duration_seconds",
			Help:    "Profile generation duration",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
		states: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "profiler_profile_states",
			Help:    "Number of states in generated profiles",
			Buckets: prometheus.ExponentialBuckets(4, 4, 8),
		}),
	}
}
