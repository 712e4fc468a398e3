package authz

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Decision outcomes recorded by the gate.
const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
	OutcomeError = "error"
)

// Metrics counts authorization decisions.
type Metrics struct {
	decisions *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the gate metrics against the provided registerer. When the
// registerer is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dds_authz_decisions_total",
		Help: "Authorization decisions partitioned by action and outcome.",
	}, []string{"action", "outcome"})
	registerer.MustRegister(decisions)
	return &Metrics{decisions: decisions}
}

func (m *Metrics) observe(action, outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(action, outcome).Inc()
}
