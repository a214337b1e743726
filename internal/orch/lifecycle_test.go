package orch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"orchd/internal/runtime"
)

func TestEnsureReadyStartsDependencyFirst(t *testing.T) {
	o, rt, _, _ := newTestOrchestrator(hubSpecs())
	// probes answer as soon as containers run
	if !o.EnsureReady(context.Background(), "hub-gateway") {
		t.Fatalf("ensure should succeed")
	}
	depStart := rt.callIndex("start:redis")
	targetStart := rt.callIndex("start:hub-gateway")
	if depStart < 0 || targetStart < 0 {
		t.Fatalf("expected both starts, calls: %v", rt.callList())
	}
	if depStart > targetStart {
		t.Fatalf("dependency must start before target, calls: %v", rt.callList())
	}
}

func TestEnsureReadyFailsFastOnDependencyTimeout(t *testing.T) {
	o, rt, _, _ := newTestOrchestrator(hubSpecs(), func(cfg *Config) {
		cfg.WaitTimeout = 20 * time.Millisecond
	})
	rt.startFlips = false // redis never reaches running
	if o.EnsureReady(context.Background(), "hub-gateway") {
		t.Fatalf("ensure should fail when dependency never becomes ready")
	}
	if rt.callIndex("start:hub-gateway") >= 0 {
		t.Fatalf("target must not be started after dependency failure, calls: %v", rt.callList())
	}
}

func TestEnsureReadyFailsFastOnDependencyStartError(t *testing.T) {
	o, rt, _, _ := newTestOrchestrator(hubSpecs())
	rt.startErr["redis"] = errors.New("no such container")
	if o.EnsureReady(context.Background(), "hub-gateway") {
		t.Fatalf("ensure should fail when dependency start errors")
	}
	if rt.callIndex("start:hub-gateway") >= 0 {
		t.Fatalf("target must not be started, calls: %v", rt.callList())
	}
}

func TestEnsureReadySelfHealsDownDependency(t *testing.T) {
	o, rt, _, _ := newTestOrchestrator(hubSpecs())
	rt.set("hub-gateway", runtime.StatusRunning)
	rt.set("redis", runtime.StatusStopped)
	if !o.EnsureReady(context.Background(), "hub-gateway") {
		t.Fatalf("self-healing ensure should succeed")
	}
	if rt.callIndex("start:redis") < 0 {
		t.Fatalf("down dependency must be restarted, calls: %v", rt.callList())
	}
}

func TestEnsureReadyAlreadyRunningSkipsStart(t *testing.T) {
	o, rt, _, _ := newTestOrchestrator(hubSpecs())
	rt.set("hub-gateway", runtime.StatusRunning)
	rt.set("redis", runtime.StatusRunning)
	if !o.EnsureReady(context.Background(), "hub-gateway") {
		t.Fatalf("ensure should succeed")
	}
	if rt.countCalls("start:") != 0 {
		t.Fatalf("no starts expected, calls: %v", rt.callList())
	}
}

func TestEnsureReadyTouchesRegistry(t *testing.T) {
	o, rt, _, _ := newTestOrchestrator(hubSpecs())
	rt.set("redis", runtime.StatusRunning)
	o.EnsureReady(context.Background(), "redis")
	st, _ := o.registry.Get("redis")
	if st.LastUsed.IsZero() {
		t.Fatalf("ensure must update lastUsed")
	}
}

func TestEnsureDisabledLifecycleIsNoop(t *testing.T) {
	o, rt, _, _ := newTestOrchestrator(hubSpecs(), func(cfg *Config) {
		cfg.AutoLifecycle = false
	})
	if !o.EnsureReady(context.Background(), "hub-gateway") {
		t.Fatalf("disabled lifecycle must report success")
	}
	if !o.EnsureMultipleReady(context.Background(), []string{"hub-gateway", "qdrant"}) {
		t.Fatalf("disabled lifecycle must report success")
	}
	if len(rt.callList()) != 0 {
		t.Fatalf("disabled lifecycle must not touch the runtime, calls: %v", rt.callList())
	}
}

func TestEnsureMultipleReadyScenario(t *testing.T) {
	specs := []ServiceSpec{
		{Name: "redis"},
		{Name: "qdrant", IdleEligible: true},
		{Name: "ollama", IdleEligible: true},
		{Name: "hub-gateway", IdleEligible: true, DependsOn: []string{"redis"}},
	}
	o, rt, _, _ := newTestOrchestrator(specs, func(cfg *Config) {
		cfg.Precedence = []string{"redis", "postgres", "qdrant", "ollama", "hub-gateway"}
	})
	if !o.EnsureMultipleReady(context.Background(), []string{"hub-gateway"}) {
		t.Fatalf("ensure should succeed")
	}
	if rt.callIndex("start:redis") > rt.callIndex("start:hub-gateway") {
		t.Fatalf("redis must start before hub-gateway, calls: %v", rt.callList())
	}
	order := o.ResolveOrder([]string{"hub-gateway"})
	if len(order) != 2 || order[0] != "redis" || order[1] != "hub-gateway" {
		t.Fatalf("expected [redis hub-gateway], got %v", order)
	}
}

func TestEnsureMultipleReadyStopsAtFirstFailure(t *testing.T) {
	specs := []ServiceSpec{
		{Name: "redis"},
		{Name: "worker", IdleEligible: true, DependsOn: []string{"redis"}},
	}
	o, rt, _, _ := newTestOrchestrator(specs, func(cfg *Config) {
		cfg.Precedence = []string{"redis", "worker"}
		cfg.WaitTimeout = 20 * time.Millisecond
	})
	rt.startErr["redis"] = errors.New("boom")
	if o.EnsureMultipleReady(context.Background(), []string{"worker"}) {
		t.Fatalf("ensure should fail")
	}
	if rt.callIndex("start:worker") >= 0 {
		t.Fatalf("worker must not be started, calls: %v", rt.callList())
	}
}

func TestWaitUntilReadyTimesOut(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(hubSpecs())
	start := time.Now()
	if o.controller.WaitUntilReady(context.Background(), "redis", 15*time.Millisecond) {
		t.Fatalf("wait should time out for stopped service")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("wait exceeded its budget by far")
	}
}

func TestWaitUntilReadyObservesLateStart(t *testing.T) {
	o, rt, _, _ := newTestOrchestrator(hubSpecs())
	done := make(chan bool, 1)
	go func() {
		done <- o.controller.WaitUntilReady(context.Background(), "redis", 200*time.Millisecond)
	}()
	time.Sleep(10 * time.Millisecond)
	rt.set("redis", runtime.StatusRunning)
	if ok := <-done; !ok {
		t.Fatalf("wait should observe the service coming up")
	}
}

func TestStopUpdatesRegistry(t *testing.T) {
	o, rt, _, _ := newTestOrchestrator(hubSpecs())
	rt.set("qdrant", runtime.StatusRunning)
	if err := o.Stop(context.Background(), "qdrant"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	st, _ := o.registry.Get("qdrant")
	if st.Actual != HealthStopped {
		t.Fatalf("expected stopped in registry, got %s", st.Actual)
	}
	if rt.callIndex("stop:qdrant") < 0 {
		t.Fatalf("expected stop call, calls: %v", rt.callList())
	}
}

func TestStopDoesNotCascade(t *testing.T) {
	o, rt, _, _ := newTestOrchestrator(hubSpecs())
	rt.set("hub-gateway", runtime.StatusRunning)
	rt.set("redis", runtime.StatusRunning)
	_ = o.Stop(context.Background(), "redis")
	if rt.callIndex("stop:hub-gateway") >= 0 {
		t.Fatalf("stop must not cascade to dependents, calls: %v", rt.callList())
	}
}

func TestStopReportsFailure(t *testing.T) {
	o, rt, _, _ := newTestOrchestrator(hubSpecs())
	engineErr := errors.New("engine unreachable")
	rt.stopErr["redis"] = engineErr
	err := o.Stop(context.Background(), "redis")
	if err == nil {
		t.Fatalf("stop should report failure")
	}
	if !errors.Is(err, engineErr) {
		t.Fatalf("stop error must wrap the runtime error, got %v", err)
	}
	var he interface{ StatusCode() int }
	if !errors.As(err, &he) || he.StatusCode() != http.StatusBadGateway {
		t.Fatalf("stop error must carry a bad-gateway status, got %v", err)
	}
}

func TestEnsurePublishesEvents(t *testing.T) {
	pub := NewMemoryPublisher()
	o, _, _, _ := newTestOrchestrator(hubSpecs(), func(cfg *Config) {
		cfg.Publisher = pub
	})
	o.EnsureReady(context.Background(), "redis")
	var names []string
	for _, e := range pub.Events() {
		names = append(names, e.Name)
	}
	if len(names) == 0 || names[0] != "ensure_start" {
		t.Fatalf("expected ensure_start first, got %v", names)
	}
	last := names[len(names)-1]
	if last != "ensure_ready" {
		t.Fatalf("expected ensure_ready last, got %v", names)
	}
}

func TestEnsureAlreadyRunningPublishesTerminalEvent(t *testing.T) {
	pub := NewMemoryPublisher()
	o, rt, _, _ := newTestOrchestrator(hubSpecs(), func(cfg *Config) {
		cfg.Publisher = pub
	})
	rt.set("redis", runtime.StatusRunning)
	if !o.EnsureReady(context.Background(), "redis") {
		t.Fatalf("ensure should succeed")
	}
	// Every ensure_start must be balanced by a terminal event, even on the
	// fast path where nothing is started.
	var names []string
	for _, e := range pub.Events() {
		names = append(names, e.Name)
	}
	if len(names) != 2 || names[0] != "ensure_start" || names[1] != "ensure_ready" {
		t.Fatalf("expected [ensure_start ensure_ready], got %v", names)
	}
}
