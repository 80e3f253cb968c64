// Package telemetry exposes transport runs to Prometheus and OpenTelemetry.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kunok-chang/Radiation-Safety/internal/transport"
)

// Metrics implements transport.Observer.
type Metrics struct {
	photons      *prometheus.CounterVec
	crossings    prometheus.Counter
	interactions prometheus.Histogram
	runs         prometheus.Counter
	runDuration  prometheus.Histogram
}

var _ transport.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		photons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radsafety_photons_total",
				Help: "Photon histories simulated, by final outcome",
			},
			[]string{"outcome"},
		),
		crossings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "radsafety_boundary_crossings_total",
			Help: "Photons that reached the boundary check radius",
		}),
		interactions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "radsafety_photon_interactions",
			Help:    "Free flights per photon history",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "radsafety_runs_total",
			Help: "Completed ensemble runs",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "radsafety_run_duration_seconds",
			Help:    "Wall time of ensemble runs",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.photons, m.crossings, m.interactions, m.runs, m.runDuration)
	for _, o := range []transport.Outcome{transport.Absorbed, transport.Escaped, transport.Diverged} {
		m.photons.WithLabelValues(o.String())
	}
	return m
}

// ObservePhoton records one photon history.
func (m *Metrics) ObservePhoton(r transport.PhotonResult) {
	m.photons.WithLabelValues(r.Outcome.String()).Inc()
	if r.Crossed {
		m.crossings.Inc()
	}
	m.interactions.Observe(float64(r.Interactions))
}

// ObserveRun records a finished ensemble.
func (m *Metrics) ObserveRun(res *transport.EnsembleResult) {
	m.runs.Inc()
	m.runDuration.Observe(res.Elapsed.Seconds())
}
