package orch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"orchd/internal/runtime"
)

// Controller orchestrates start-with-dependencies, wait-until-ready and
// stop operations against the container runtime.
type Controller struct {
	catalog   *Catalog
	registry  *Registry
	resolver  *Resolver
	checker   *Checker
	runtime   runtime.ContainerRuntime
	publisher EventPublisher
	log       zerolog.Logger

	// auto is the administrative lifecycle switch. When false, Ensure*
	// succeed without acting: services are assumed externally managed.
	auto         bool
	waitTimeout  time.Duration
	pollInterval time.Duration
	nowFn        func() time.Time
}

// EnsureReady brings name and its full dependency closure up, in resolved
// order, each dependency confirmed ready before the next start. It fails
// fast: the target is never started after a dependency failure.
func (c *Controller) EnsureReady(ctx context.Context, name string) bool {
	if !c.auto {
		return true
	}
	c.registry.Touch(name)
	c.publisher.Publish(Event{Name: "ensure_start", Service: name})

	st, err := c.runtime.Status(ctx, name)
	if err == nil && st == runtime.StatusRunning {
		if c.dependenciesRunning(ctx, name) {
			ensureTotal.WithLabelValues(name, "already_running").Inc()
			c.publisher.Publish(Event{Name: "ensure_ready", Service: name})
			return true
		}
		// Running but a dependency is down: self-healing restart path
		// rather than declaring success.
		c.log.Warn().Str("service", name).Msg("running with dependency down, re-triggering full start")
	}

	ok := c.startWithDependencies(ctx, name)
	if ok {
		ensureTotal.WithLabelValues(name, "started").Inc()
		c.publisher.Publish(Event{Name: "ensure_ready", Service: name})
	} else {
		ensureTotal.WithLabelValues(name, "failed").Inc()
		c.publisher.Publish(Event{Name: "ensure_failed", Service: name})
	}
	return ok
}

// EnsureMultipleReady resolves the closure across all requested names and
// ensures each in order, stopping at the first failure.
func (c *Controller) EnsureMultipleReady(ctx context.Context, names []string) bool {
	if !c.auto {
		return true
	}
	for _, name := range c.resolver.Resolve(names) {
		if !c.EnsureReady(ctx, name) {
			return false
		}
	}
	return true
}

// WaitUntilReady polls for a positive readiness signal on a fixed interval
// until timeout. Services without a declared probe only need a running
// container; everything else must reach healthy.
func (c *Controller) WaitUntilReady(ctx context.Context, name string, timeout time.Duration) bool {
	deadline := c.nowFn().Add(timeout)
	for {
		if c.readyNow(ctx, name) {
			return true
		}
		if !c.nowFn().Before(deadline) {
			c.log.Warn().Str("service", name).Dur("timeout", timeout).Msg("wait for readiness timed out")
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.pollInterval):
		}
	}
}

// Stop halts name and records the new actual state. Stopping never
// cascades to dependents or dependencies. A runtime failure is returned
// as a StopError so API callers can map it to a status code.
func (c *Controller) Stop(ctx context.Context, name string) error {
	return c.stopWithReason(ctx, name, "manual")
}

func (c *Controller) stopWithReason(ctx context.Context, name, reason string) error {
	if err := c.runtime.Stop(ctx, name); err != nil {
		c.log.Error().Str("service", name).Err(err).Msg("stop failed")
		return &StopError{Service: name, Err: err}
	}
	c.registry.SetActual(name, HealthStopped)
	stopsTotal.WithLabelValues(name, reason).Inc()
	c.publisher.Publish(Event{Name: "stopped", Service: name, Fields: map[string]any{"reason": reason}})
	c.log.Info().Str("service", name).Str("reason", reason).Msg("service stopped")
	return nil
}

func (c *Controller) startWithDependencies(ctx context.Context, name string) bool {
	order := c.resolver.Resolve([]string{name})
	for _, dep := range order {
		if dep == name {
			continue
		}
		if !c.ensureStarted(ctx, dep) {
			c.log.Error().Str("service", name).Str("dependency", dep).Msg("dependency failed to become ready")
			return false
		}
	}
	return c.ensureStarted(ctx, name)
}

// ensureStarted starts one service if it is not already running and waits
// for a positive readiness signal within the wait budget.
func (c *Controller) ensureStarted(ctx context.Context, name string) bool {
	st, err := c.runtime.Status(ctx, name)
	if err == nil && st == runtime.StatusRunning {
		return c.WaitUntilReady(ctx, name, c.waitTimeout)
	}
	if err := c.runtime.Start(ctx, name); err != nil {
		c.log.Error().Str("service", name).Err(err).Msg("start failed")
		c.registry.SetActual(name, HealthUnknown)
		return false
	}
	startsTotal.WithLabelValues(name).Inc()
	c.publisher.Publish(Event{Name: "started", Service: name})
	c.log.Info().Str("service", name).Msg("service started")
	c.registry.SetActual(name, HealthUnknown)
	return c.WaitUntilReady(ctx, name, c.waitTimeout)
}

// dependenciesRunning checks direct dependency container liveness only.
func (c *Controller) dependenciesRunning(ctx context.Context, name string) bool {
	for _, dep := range c.catalog.Dependencies(name) {
		st, err := c.runtime.Status(ctx, dep)
		if err != nil || st != runtime.StatusRunning {
			return false
		}
	}
	return true
}

// readyNow observes one readiness signal without waiting.
func (c *Controller) readyNow(ctx context.Context, name string) bool {
	spec, ok := c.catalog.Spec(name)
	if !ok || spec.ProbeURL == "" {
		st, err := c.runtime.Status(ctx, name)
		return err == nil && st == runtime.StatusRunning
	}
	return c.checker.Health(ctx, name) == HealthHealthy
}
