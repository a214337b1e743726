package orch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"orchd/internal/runtime"
)

// ModelUnloader releases a loaded inference model.
type ModelUnloader interface {
	Unload(ctx context.Context, model string) error
}

// Monitor is the recurring background loop that reclaims idle services and
// expires model keep-alive leases. It runs as a single goroutine, so cycles
// never overlap; a failed cycle is logged and followed by a backoff delay,
// never a loop exit.
type Monitor struct {
	catalog    *Catalog
	registry   *Registry
	controller *Controller
	runtime    runtime.ContainerRuntime
	leases     *LeaseTable
	unloader   ModelUnloader
	log        zerolog.Logger

	auto        bool
	interval    time.Duration
	idleTimeout time.Duration
	backoff     time.Duration
	nowFn       func() time.Time
}

// Run loops until ctx is canceled. The current cycle finishes before the
// loop observes cancellation, so shutdown waits at most one cycle.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	m.log.Info().Dur("interval", m.interval).Dur("idle_timeout", m.idleTimeout).Msg("idle monitor started")
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("idle monitor stopped")
			return
		case <-ticker.C:
		}
		if err := m.cycle(ctx); err != nil {
			idleCycleErrors.Inc()
			m.log.Error().Err(err).Msg("idle cycle failed, backing off")
			select {
			case <-ctx.Done():
				m.log.Info().Msg("idle monitor stopped")
				return
			case <-time.After(m.backoff):
			}
		}
	}
}

// cycle performs one reclaim pass. Per-service failures do not abort the
// rest of the pass; the first error is reported for backoff.
func (m *Monitor) cycle(ctx context.Context) error {
	if !m.auto {
		// Lifecycle disabled: auto-stop and auto-unload are suppressed.
		return nil
	}
	idleErr := m.reclaimIdle(ctx)
	leaseErr := m.expireLeases(ctx)
	return errors.Join(idleErr, leaseErr)
}

func (m *Monitor) reclaimIdle(ctx context.Context) error {
	var firstErr error
	now := m.nowFn()
	for _, name := range m.catalog.Names() {
		if !m.catalog.IdleEligible(name) {
			continue
		}
		st, ok := m.registry.Get(name)
		if !ok || st.Desired == DesiredOn {
			continue
		}
		if st.LastUsed.IsZero() || now.Sub(st.LastUsed) <= m.idleTimeout {
			continue
		}
		cst, err := m.runtime.Status(ctx, name)
		if err != nil {
			m.log.Warn().Str("service", name).Err(err).Msg("idle: status check failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if cst != runtime.StatusRunning {
			continue
		}
		m.log.Info().Str("service", name).Time("last_used", st.LastUsed).Msg("stopping idle service")
		if err := m.controller.stopWithReason(ctx, name, "idle"); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Monitor) expireLeases(ctx context.Context) error {
	var firstErr error
	for _, model := range m.leases.Expired(m.nowFn()) {
		if err := m.unloader.Unload(ctx, model); err != nil {
			m.log.Warn().Str("model", model).Err(err).Msg("lease expired but unload failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		m.leases.Release(model)
		leasesExpiredTotal.Inc()
		m.log.Info().Str("model", model).Msg("expired model lease, unloaded")
	}
	return firstErr
}
