package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Evaluation outcomes, as recorded in the outcome label.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeCached  = "cached"
	outcomeInvalid = "invalid"
)

// Metrics are the Prometheus collectors of a server.
type Metrics struct {
	evaluations *prometheus.CounterVec
	duration    prometheus.Histogram
	samples     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ptframe_evaluations_total",
				Help: "Total number of rig evaluations, by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ptframe_evaluation_duration_seconds",
				Help:    "Duration of rig evaluations",
				Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
			},
		),
		samples: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ptframe_samples_total",
				Help: "Total number of samples evaluated successfully",
			},
		),
	}
	reg.MustRegister(m.evaluations, m.duration, m.samples)
	return m
}
