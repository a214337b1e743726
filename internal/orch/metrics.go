package orch

import "github.com/prometheus/client_golang/prometheus"

var (
	ensureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orchd",
			Subsystem: "lifecycle",
			Name:      "ensure_total",
			Help:      "EnsureReady outcomes per service",
		},
		[]string{"service", "outcome"},
	)

	startsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orchd",
			Subsystem: "lifecycle",
			Name:      "starts_total",
			Help:      "Container starts issued per service",
		},
		[]string{"service"},
	)

	stopsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orchd",
			Subsystem: "lifecycle",
			Name:      "stops_total",
			Help:      "Container stops issued per service and reason",
		},
		[]string{"service", "reason"},
	)

	healthChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orchd",
			Subsystem: "health",
			Name:      "checks_total",
			Help:      "Health evaluations per service and resulting state",
		},
		[]string{"service", "state"},
	)

	leasesExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "orchd",
			Subsystem: "idle",
			Name:      "leases_expired_total",
			Help:      "Model keep-alive leases expired and unloaded",
		},
	)

	idleCycleErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "orchd",
			Subsystem: "idle",
			Name:      "cycle_errors_total",
			Help:      "Idle monitor cycles that hit at least one error",
		},
	)
)

func init() {
	prometheus.MustRegister(ensureTotal, startsTotal, stopsTotal, healthChecksTotal, leasesExpiredTotal, idleCycleErrors)
}
