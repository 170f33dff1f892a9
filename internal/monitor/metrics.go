package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/turtacn/hestia/pkg/consts"
)

var allStates = []consts.LifecycleState{
	consts.StateUnstarted,
	consts.StateInitialized,
	consts.StateRunning,
	consts.StateStopping,
	consts.StateStopped,
}

// Metrics groups the lifecycle collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// PhaseDuration tracks wall-clock time of a full phase run in seconds.
	PhaseDuration *prometheus.HistogramVec
	// RestartTotal tracks the total number of restarts, partitioned by reason.
	RestartTotal *prometheus.CounterVec
	// FatalTotal counts fatal escalations by phase tag.
	FatalTotal *prometheus.CounterVec
	// State is 1 for the current lifecycle state and 0 for the others.
	State *prometheus.GaugeVec
	// Initializers is the number of registered initializers.
	Initializers prometheus.Gauge
	// BootTime is the unix time at which the last start phase completed.
	BootTime prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hestia_phase_duration_seconds",
			Help:    "Time taken to run a lifecycle phase",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"phase"}),
		RestartTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_restarts_total",
			Help: "Total number of restarts",
		}, []string{"reason"}),
		FatalTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_fatal_errors_total",
			Help: "Total number of fatal escalations",
		}, []string{"phase"}),
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hestia_lifecycle_state",
			Help: "Current lifecycle state (1 = active)",
		}, []string{"state"}),
		Initializers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hestia_initializers_registered",
			Help: "Number of registered initializers",
		}),
		BootTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hestia_boot_time_seconds",
			Help: "Unix time of the last completed start phase",
		}),
	}
	reg.MustRegister(m.PhaseDuration, m.RestartTotal, m.FatalTotal, m.State, m.Initializers, m.BootTime)
	m.SetState(consts.StateUnstarted)
	return m
}

func (m *Metrics) ObservePhase(phase consts.Phase, d time.Duration) {
	if m == nil {
		return
	}
	m.PhaseDuration.WithLabelValues(string(phase)).Observe(d.Seconds())
}

func (m *Metrics) Restarted(reason string) {
	if m == nil {
		return
	}
	m.RestartTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) Fatal(phase consts.Phase) {
	if m == nil {
		return
	}
	m.FatalTotal.WithLabelValues(string(phase)).Inc()
}

func (m *Metrics) SetState(state consts.LifecycleState) {
	if m == nil {
		return
	}
	for _, s := range allStates {
		v := 0.0
		if s == state {
			v = 1
		}
		m.State.WithLabelValues(string(s)).Set(v)
	}
}

func (m *Metrics) SetInitializers(n int) {
	if m == nil {
		return
	}
	m.Initializers.Set(float64(n))
}

func (m *Metrics) SetBootTime(t time.Time) {
	if m == nil {
		return
	}
	m.BootTime.Set(float64(t.Unix()))
}

// Personal.AI order the ending
