package orch

import "time"

// HealthState classifies a service beyond bare running/stopped.
type HealthState string

const (
	HealthUnknown   HealthState = "unknown"
	HealthStopped   HealthState = "stopped"
	HealthDegraded  HealthState = "degraded"
	HealthUnhealthy HealthState = "unhealthy"
	HealthHealthy   HealthState = "healthy"
)

// DesiredState is administrative intent for a service, independent of
// current reality. Pinned services are "on" and never auto-stopped.
type DesiredState string

const (
	DesiredOn  DesiredState = "on"
	DesiredOff DesiredState = "off"
)

// ServiceSpec describes one managed service. Specs are loaded once at
// process start and never mutated.
type ServiceSpec struct {
	Name         string
	DependsOn    []string
	IdleEligible bool
	// ProbeURL is the application-level readiness endpoint; empty means
	// "container running implies ready".
	ProbeURL     string
	ProbeTimeout time.Duration
}

// ServiceState is the mutable per-service record owned by the Registry.
type ServiceState struct {
	Desired DesiredState
	// Actual is the most recent Checker classification. It is an advisory
	// cache: the container runtime stays authoritative for liveness.
	Actual HealthState
	// LastUsed is when the service was last requested; zero = never.
	LastUsed time.Time
}

// Lease keeps one loaded inference model resident until the deadline.
// A zero KeepAliveUntil means the lease has been released.
type Lease struct {
	Model          string
	KeepAliveUntil time.Time
}
