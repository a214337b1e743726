// Package orch coordinates the lifecycle of the backing services: starting
// them on demand in dependency order, classifying their health and stopping
// them again after inactivity. It is structured into small files by concern:
//
//   - orchestrator.go: Orchestrator facade, Config and defaults.
//   - types.go: state types (HealthState, DesiredState, ServiceSpec, Lease).
//   - catalog.go: immutable service catalog and precedence list.
//   - registry.go: mutable per-service state behind one mutex.
//   - resolver.go: dependency closure and deterministic start ordering.
//   - health.go: multi-level health state machine.
//   - lifecycle.go: ensure/wait/stop control logic.
//   - idle.go: background idle monitor and lease expiry.
//   - leases.go: model keep-alive lease table.
//   - probe.go: HTTP readiness prober.
//   - events.go: lifecycle event publishing.
//
// External packages should treat this package as the orchestration layer and
// use the Orchestrator's public methods only. Internal types are subject to
// change.
package orch
