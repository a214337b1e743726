package orch

import (
	"context"

	"github.com/rs/zerolog"

	"orchd/internal/runtime"
)

// Checker classifies a service beyond running/stopped by combining
// container status, dependency liveness and the readiness probe.
type Checker struct {
	catalog  *Catalog
	registry *Registry
	runtime  runtime.ContainerRuntime
	prober   Prober
	log      zerolog.Logger
}

func NewChecker(catalog *Catalog, registry *Registry, rt runtime.ContainerRuntime, prober Prober, log zerolog.Logger) *Checker {
	return &Checker{catalog: catalog, registry: registry, runtime: rt, prober: prober, log: log}
}

// Health evaluates the state machine fresh on every call and mirrors the
// result into the registry as advisory cache. Callers must treat unknown
// as "not confirmed ready", never as a positive signal.
func (h *Checker) Health(ctx context.Context, name string) HealthState {
	state := h.evaluate(ctx, name)
	h.registry.SetActual(name, state)
	healthChecksTotal.WithLabelValues(name, string(state)).Inc()
	return state
}

func (h *Checker) evaluate(ctx context.Context, name string) HealthState {
	// 1. Container status. Not running is terminal for this call:
	// dependencies and probes are not even consulted.
	st, err := h.runtime.Status(ctx, name)
	if err != nil {
		h.log.Debug().Str("service", name).Err(err).Msg("health: status check failed")
		return HealthUnknown
	}
	if st != runtime.StatusRunning {
		return HealthStopped
	}

	// 2. Direct dependency container liveness only; no recursive health.
	for _, dep := range h.catalog.Dependencies(name) {
		dst, err := h.runtime.Status(ctx, dep)
		if err != nil {
			h.log.Debug().Str("service", name).Str("dependency", dep).Err(err).Msg("health: dependency check failed")
			return HealthUnknown
		}
		if dst != runtime.StatusRunning {
			return HealthDegraded
		}
	}

	// 3. Application-level readiness. No declared probe means healthy once
	// running; a probe failure or timeout is an explicit negative result.
	spec, ok := h.catalog.Spec(name)
	if !ok || spec.ProbeURL == "" {
		return HealthHealthy
	}
	if err := h.prober.Probe(ctx, spec.ProbeURL, spec.ProbeTimeout); err != nil {
		h.log.Debug().Str("service", name).Err(err).Msg("health: readiness probe failed")
		return HealthUnhealthy
	}
	return HealthHealthy
}
