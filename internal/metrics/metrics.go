// Package metrics exposes the audit trail's Prometheus series. A nil
// *Registry is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ScopeGlobal = "global"
	ScopeTenant = "tenant"

	CheckpointWritten = "written"
	CheckpointEmpty   = "empty"
	CheckpointFailed  = "failed"
)

type Registry struct {
	reg *prometheus.Registry

	Checkpoints   *prometheus.CounterVec
	Verifications *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
	ChainLength   *prometheus.GaugeVec
	BreakerState  *prometheus.GaugeVec
}

func New() *Registry {
	m := &Registry{
		reg: prometheus.NewRegistry(),

		Checkpoints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentchain_checkpoints_total",
				Help: "Checkpoint attempts by result",
			},
			[]string{"result"},
		),

		Verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentchain_verifications_total",
				Help: "Verification runs by outcome",
			},
			[]string{"outcome"},
		),

		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rentchain_chain_build_seconds",
				Help:    "Time spent building a chain from ledger events",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"scope"},
		),

		ChainLength: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rentchain_chain_length",
				Help: "Block count of the most recently built chain",
			},
			[]string{"scope"},
		),

		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rentchain_source_breaker_state",
				Help: "Event source circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),
	}

	m.reg.MustRegister(
		m.Checkpoints,
		m.Verifications,
		m.BuildDuration,
		m.ChainLength,
		m.BreakerState,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Registry) ObserveCheckpoint(result string) {
	if m == nil {
		return
	}
	m.Checkpoints.WithLabelValues(result).Inc()
}

func (m *Registry) ObserveVerification(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}

func (m *Registry) ObserveBuild(scope string, d time.Duration, length int) {
	if m == nil {
		return
	}
	m.BuildDuration.WithLabelValues(scope).Observe(d.Seconds())
	m.ChainLength.WithLabelValues(scope).Set(float64(length))
}

func (m *Registry) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
