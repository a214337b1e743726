package types

// ServiceStatus summarizes one managed service for GET /services and /status.
type ServiceStatus struct {
	// Logical service name from the catalog.
	// example: ollama
	Name string `json:"name" example:"ollama"`
	// Administrative intent: "on" (pinned) or "off".
	// example: off
	Desired string `json:"desired" example:"off"`
	// Last observed health classification (advisory cache, not authoritative).
	// example: healthy
	Actual string `json:"actual" example:"healthy"`
	// Last time the service was requested (unix seconds, 0 = never).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Whether the idle monitor may auto-stop this service.
	// example: true
	IdleEligible bool `json:"idle_eligible" example:"true"`
	// Direct dependencies declared in the catalog.
	Dependencies []string `json:"dependencies,omitempty"`
}

// LeaseStatus summarizes one model keep-alive lease for GET /leases.
type LeaseStatus struct {
	// Model identifier known to the inference runtime.
	// example: llama3:8b
	Model string `json:"model" example:"llama3:8b"`
	// When the lease expires (unix seconds, 0 = already released).
	// example: 1700000300
	KeepAliveUntil int64 `json:"keep_alive_until_unix" example:"1700000300"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Whether automatic lifecycle management is enabled.
	// example: true
	AutoLifecycle bool `json:"auto_lifecycle" example:"true"`
	// Configured idle timeout in seconds.
	// example: 3600
	IdleTimeoutSeconds int64 `json:"idle_timeout_seconds" example:"3600"`
	// Registry snapshot for all known services.
	Services []ServiceStatus `json:"services"`
	// Active model keep-alive leases.
	Leases []LeaseStatus `json:"leases"`
	// Uptime of the daemon in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// EnsureRequest asks the daemon to bring services (and their dependencies) up.
type EnsureRequest struct {
	// Logical service names to make ready.
	// example: ["hub-gateway"]
	Services []string `json:"services"`
}

// EnsureResponse reports the outcome of POST /services/ensure.
type EnsureResponse struct {
	// True when every requested service (and its dependencies) is ready.
	// example: true
	Ready bool `json:"ready" example:"true"`
	// Resolved start order that was attempted.
	Order []string `json:"order,omitempty"`
}

// HealthResponse is returned by GET /services/{name}/health.
type HealthResponse struct {
	// Service name.
	// example: qdrant
	Name string `json:"name" example:"qdrant"`
	// Health classification: stopped, degraded, unhealthy, healthy or unknown.
	// example: healthy
	State string `json:"state" example:"healthy"`
}

// LeaseRequest registers a keep-alive lease for a loaded inference model.
type LeaseRequest struct {
	// Model identifier known to the inference runtime.
	// example: llama3:8b
	Model string `json:"model" example:"llama3:8b"`
	// Keep-alive duration in seconds; 0 makes the model immediately reclaimable.
	// example: 300
	KeepAliveSeconds int64 `json:"keep_alive_seconds" example:"300"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
