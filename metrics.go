package authcore

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes engine counters on a Prometheus registry. All
// methods are nil-safe no-ops when metrics are disabled, so the
// engine never branches on the config at call sites.
type Metrics struct {
	loginSuccess  prometheus.Counter
	loginFailure  prometheus.Counter
	validations   *prometheus.CounterVec
	refreshes     prometheus.Counter
	revocations   prometheus.Counter
	suspicious    prometheus.Counter
	sweepRemovals *prometheus.CounterVec
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMetrics(cfg MetricsConfig, reg prometheus.Registerer) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "login_success_total",
			Help:      "Successful logins.",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "login_failure_total",
			Help:      "Failed login attempts.",
		}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "validations_total",
			Help:      "Token validation attempts by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "token_refresh_total",
			Help:      "Successful token refreshes.",
		}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "revocations_total",
			Help:      "Tokens blacklisted before expiry.",
		}),
		suspicious: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "suspicious_activity_total",
			Help:      "Anomaly detector alerts.",
		}),
		sweepRemovals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "sweep_removals_total",
			Help:      "Entries removed by the maintenance sweep, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.loginSuccess, m.loginFailure, m.validations,
		m.refreshes, m.revocations, m.suspicious, m.sweepRemovals,
	)
	return m
}

// LoginSuccess describes the loginsuccess operation and its observable behavior.
//
// LoginSuccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) LoginSuccess() {
	if m != nil {
		m.loginSuccess.Inc()
	}
}

// LoginFailure describes the loginfailure operation and its observable behavior.
//
// LoginFailure does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) LoginFailure() {
	if m != nil {
		m.loginFailure.Inc()
	}
}

// Validation describes the validation operation and its observable behavior.
//
// Validation does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Validation(result string) {
	if m != nil {
		m.validations.WithLabelValues(result).Inc()
	}
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Refresh() {
	if m != nil {
		m.refreshes.Inc()
	}
}

// Revocations describes the revocations operation and its observable behavior.
//
// Revocations does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Revocations(n int) {
	if m != nil && n > 0 {
		m.revocations.Add(float64(n))
	}
}

// Suspicious describes the suspicious operation and its observable behavior.
//
// Suspicious does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Suspicious() {
	if m != nil {
		m.suspicious.Inc()
	}
}

// SweepRemovals describes the sweepremovals operation and its observable behavior.
//
// SweepRemovals does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) SweepRemovals(kind string, n int) {
	if m != nil && n > 0 {
		m.sweepRemovals.WithLabelValues(kind).Add(float64(n))
	}
}
