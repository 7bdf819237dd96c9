package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the Prometheus collectors exported by the engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Ticks        *prometheus.CounterVec
	TickDuration *prometheus.HistogramVec
	TickPanics   *prometheus.CounterVec
	Samples      *prometheus.CounterVec
	Rebinds      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// If reg is nil the collectors are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_ticks_total",
				Help: "Total number of ticks executed per time-variant node",
			},
			[]string{"node"},
		),
		TickDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "espalier_tick_duration_seconds",
				Help:    "Duration of a single tick per time-variant node",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"node"},
		),
		TickPanics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_tick_panics_total",
				Help: "Ticks that panicked and were recovered",
			},
			[]string{"node"},
		),
		Samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_samples_total",
				Help: "Total number of samples read per labelled output",
			},
			[]string{"label"},
		),
		Rebinds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_rebinds_total",
				Help: "Successful slot rebinds",
			},
			[]string{"slot"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Ticks, m.TickDuration, m.TickPanics, m.Samples, m.Rebinds)
	}
	return m
}

// ObserveTick records one tick of the named node.
func (m *Metrics) ObserveTick(node string, seconds float64) {
	if m == nil {
		return
	}
	m.Ticks.WithLabelValues(node).Inc()
	m.TickDuration.WithLabelValues(node).Observe(seconds)
}

// ObservePanic records a recovered tick panic.
func (m *Metrics) ObservePanic(node string) {
	if m == nil {
		return
	}
	m.TickPanics.WithLabelValues(node).Inc()
}

// ObserveSample records one read of a labelled output.
func (m *Metrics) ObserveSample(label string) {
	if m == nil {
		return
	}
	m.Samples.WithLabelValues(label).Inc()
}

// ObserveRebind records a successful slot rebind.
func (m *Metrics) ObserveRebind(slot string) {
	if m == nil {
		return
	}
	m.Rebinds.WithLabelValues(slot).Inc()
}
