// Package metrics exposes Prometheus counters for the execution core:
//
//   - exec_attempts_total{type,status} – placement/cancellation attempts by outcome
//   - exec_rollbacks_total             – partial-bracket rollbacks performed
//   - exec_rollback_cancel_errors_total – individual leg cancels that failed during rollback
//   - exec_risk_halts_total{reason}    – risk-engine halts by window
//
// Registration happens in init(); the embedding process decides whether and
// where to serve /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Attempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exec_attempts_total",
			Help: "Execution attempts by type and terminal status",
		},
		[]string{"type", "status"},
	)

	Rollbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exec_rollbacks_total",
			Help: "Partial-bracket rollbacks performed",
		},
	)

	RollbackCancelErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exec_rollback_cancel_errors_total",
			Help: "Leg cancels that failed during rollback",
		},
	)

	RiskHalts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exec_risk_halts_total",
			Help: "Risk engine halts by window",
		},
		[]string{"window"},
	)
)

func init() {
	prometheus.MustRegister(Attempts, Rollbacks, RollbackCancelErrors, RiskHalts)
}
