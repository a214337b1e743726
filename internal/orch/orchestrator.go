package orch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"orchd/internal/runtime"
	"orchd/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultIdleTimeout  = 60 * time.Minute
	defaultIdleInterval = 60 * time.Second
	defaultIdleBackoff  = 10 * time.Second
	defaultWaitTimeout  = 120 * time.Second
	defaultPollInterval = 2 * time.Second
)

// Config encapsulates all tunables for Orchestrator construction.
type Config struct {
	Services   []ServiceSpec
	Precedence []string
	// PinnedOn services get desired state "on" and are never auto-stopped.
	PinnedOn []string

	// AutoLifecycle false makes Ensure* no-ops that report success and
	// suppresses idle stops; services are assumed externally managed.
	AutoLifecycle bool

	IdleTimeout  time.Duration
	IdleInterval time.Duration
	IdleBackoff  time.Duration
	WaitTimeout  time.Duration
	PollInterval time.Duration

	Runtime   runtime.ContainerRuntime
	Unloader  ModelUnloader
	Prober    Prober
	Publisher EventPublisher
	Logger    zerolog.Logger
}

// Orchestrator owns the registry, lease table and control loops. It is an
// explicit object injected into callers; no ambient process-wide state.
type Orchestrator struct {
	catalog    *Catalog
	registry   *Registry
	resolver   *Resolver
	checker    *Checker
	controller *Controller
	monitor    *Monitor
	leases     *LeaseTable

	auto        bool
	idleTimeout time.Duration
	startTime   time.Time
	log         zerolog.Logger
}

// noopUnloader stands in when no inference runtime is configured; leases
// then expire without a remote call.
type noopUnloader struct{}

func (noopUnloader) Unload(context.Context, string) error { return nil }

// NewWithConfig constructs an Orchestrator from Config, applying defaults
// for unset durations and optional collaborators.
func NewWithConfig(cfg Config) *Orchestrator {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = defaultIdleInterval
	}
	if cfg.IdleBackoff <= 0 {
		cfg.IdleBackoff = defaultIdleBackoff
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = defaultWaitTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Prober == nil {
		cfg.Prober = NewHTTPProber(5 * time.Second)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	if cfg.Unloader == nil {
		cfg.Unloader = noopUnloader{}
	}

	catalog := NewCatalog(cfg.Services, cfg.Precedence)
	if cycle := catalog.FindCycle(); cycle != nil {
		// Tolerated at runtime (the resolver visits each service once),
		// but worth surfacing at startup.
		cfg.Logger.Warn().Strs("services", cycle).Msg("dependency cycle in catalog")
	}
	registry := NewRegistry(catalog.Names())
	for _, name := range cfg.PinnedOn {
		registry.SetDesired(name, DesiredOn)
	}
	resolver := NewResolver(catalog)
	checker := NewChecker(catalog, registry, cfg.Runtime, cfg.Prober, cfg.Logger)
	controller := &Controller{
		catalog:      catalog,
		registry:     registry,
		resolver:     resolver,
		checker:      checker,
		runtime:      cfg.Runtime,
		publisher:    cfg.Publisher,
		log:          cfg.Logger,
		auto:         cfg.AutoLifecycle,
		waitTimeout:  cfg.WaitTimeout,
		pollInterval: cfg.PollInterval,
		nowFn:        time.Now,
	}
	leases := NewLeaseTable()
	monitor := &Monitor{
		catalog:     catalog,
		registry:    registry,
		controller:  controller,
		runtime:     cfg.Runtime,
		leases:      leases,
		unloader:    cfg.Unloader,
		log:         cfg.Logger,
		auto:        cfg.AutoLifecycle,
		interval:    cfg.IdleInterval,
		idleTimeout: cfg.IdleTimeout,
		backoff:     cfg.IdleBackoff,
		nowFn:       time.Now,
	}
	return &Orchestrator{
		catalog:     catalog,
		registry:    registry,
		resolver:    resolver,
		checker:     checker,
		controller:  controller,
		monitor:     monitor,
		leases:      leases,
		auto:        cfg.AutoLifecycle,
		idleTimeout: cfg.IdleTimeout,
		startTime:   time.Now(),
		log:         cfg.Logger,
	}
}

// EnsureReady brings one service and its dependencies up.
func (o *Orchestrator) EnsureReady(ctx context.Context, name string) bool {
	return o.controller.EnsureReady(ctx, name)
}

// EnsureMultipleReady brings a set of services and their shared dependency
// closure up, in resolved order.
func (o *Orchestrator) EnsureMultipleReady(ctx context.Context, names []string) bool {
	return o.controller.EnsureMultipleReady(ctx, names)
}

// Health classifies one service.
func (o *Orchestrator) Health(ctx context.Context, name string) HealthState {
	return o.checker.Health(ctx, name)
}

// Stop halts one service without cascading.
func (o *Orchestrator) Stop(ctx context.Context, name string) error {
	return o.controller.Stop(ctx, name)
}

// RegisterLease records a keep-alive lease for a loaded inference model.
func (o *Orchestrator) RegisterLease(model string, keepAlive time.Duration) {
	o.leases.Register(model, keepAlive)
}

// ResolveOrder exposes the deterministic start order for a request.
func (o *Orchestrator) ResolveOrder(names []string) []string {
	return o.resolver.Resolve(names)
}

// RunMonitor runs the idle monitor loop until ctx is canceled.
func (o *Orchestrator) RunMonitor(ctx context.Context) {
	o.monitor.Run(ctx)
}

// Ready reports whether the orchestrator can serve requests.
func (o *Orchestrator) Ready() bool { return true }

// Status builds the observability snapshot for /status.
func (o *Orchestrator) Status() types.StatusResponse {
	resp := types.StatusResponse{
		AutoLifecycle:      o.auto,
		IdleTimeoutSeconds: int64(o.idleTimeout / time.Second),
		UptimeSeconds:      int64(time.Since(o.startTime) / time.Second),
		ServerTimeUnix:     time.Now().Unix(),
	}
	states := o.registry.Snapshot()
	for _, name := range o.catalog.Names() {
		st := states[name]
		lastUsed := int64(0)
		if !st.LastUsed.IsZero() {
			lastUsed = st.LastUsed.Unix()
		}
		resp.Services = append(resp.Services, types.ServiceStatus{
			Name:         name,
			Desired:      string(st.Desired),
			Actual:       string(st.Actual),
			LastUsed:     lastUsed,
			IdleEligible: o.catalog.IdleEligible(name),
			Dependencies: o.catalog.Dependencies(name),
		})
	}
	resp.Leases = make([]types.LeaseStatus, 0)
	for _, l := range o.leases.Snapshot() {
		until := int64(0)
		if !l.KeepAliveUntil.IsZero() {
			until = l.KeepAliveUntil.Unix()
		}
		resp.Leases = append(resp.Leases, types.LeaseStatus{Model: l.Model, KeepAliveUntil: until})
	}
	return resp
}
