package orch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"orchd/internal/runtime"
)

// fakeRuntime is a scripted ContainerRuntime recording every call.
type fakeRuntime struct {
	mu        sync.Mutex
	status    map[string]runtime.Status
	statusErr map[string]error
	startErr  map[string]error
	stopErr   map[string]error
	// startFlips makes Start transition the container to running, which is
	// what a healthy engine does shortly after the call.
	startFlips bool
	calls      []string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		status:     make(map[string]runtime.Status),
		statusErr:  make(map[string]error),
		startErr:   make(map[string]error),
		stopErr:    make(map[string]error),
		startFlips: true,
	}
}

func (f *fakeRuntime) set(name string, st runtime.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[name] = st
}

func (f *fakeRuntime) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeRuntime) Status(_ context.Context, name string) (runtime.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("status:" + name)
	if err := f.statusErr[name]; err != nil {
		return runtime.StatusUnknown, err
	}
	st, ok := f.status[name]
	if !ok {
		return runtime.StatusStopped, nil
	}
	return st, nil
}

func (f *fakeRuntime) Start(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("start:" + name)
	if err := f.startErr[name]; err != nil {
		return err
	}
	if f.startFlips {
		f.status[name] = runtime.StatusRunning
	}
	return nil
}

func (f *fakeRuntime) Stop(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stop:" + name)
	if err := f.stopErr[name]; err != nil {
		return err
	}
	f.status[name] = runtime.StatusStopped
	return nil
}

func (f *fakeRuntime) callList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// callIndex returns the position of the first matching call, or -1.
func (f *fakeRuntime) callIndex(call string) int {
	for i, c := range f.callList() {
		if c == call {
			return i
		}
	}
	return -1
}

func (f *fakeRuntime) countCalls(prefix string) int {
	n := 0
	for _, c := range f.callList() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// fakeProber scripts probe outcomes per URL.
type fakeProber struct {
	mu  sync.Mutex
	err map[string]error
}

func newFakeProber() *fakeProber { return &fakeProber{err: make(map[string]error)} }

func (p *fakeProber) fail(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err[url] = errors.New("probe failed: " + url)
}

func (p *fakeProber) Probe(_ context.Context, url string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err[url]
}

// fakeUnloader records unload calls and can fail a model a given number
// of times before succeeding.
type fakeUnloader struct {
	mu       sync.Mutex
	failures map[string]int
	calls    []string
}

func newFakeUnloader() *fakeUnloader { return &fakeUnloader{failures: make(map[string]int)} }

func (u *fakeUnloader) Unload(_ context.Context, model string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, model)
	if u.failures[model] > 0 {
		u.failures[model]--
		return errors.New("unload failed: " + model)
	}
	return nil
}

func (u *fakeUnloader) callList() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]string, len(u.calls))
	copy(out, u.calls)
	return out
}

// newTestOrchestrator wires an orchestrator with fast timings and fakes.
func newTestOrchestrator(specs []ServiceSpec, opts ...func(*Config)) (*Orchestrator, *fakeRuntime, *fakeProber, *fakeUnloader) {
	rt := newFakeRuntime()
	prober := newFakeProber()
	unloader := newFakeUnloader()
	cfg := Config{
		Services:      specs,
		AutoLifecycle: true,
		WaitTimeout:   50 * time.Millisecond,
		PollInterval:  time.Millisecond,
		IdleTimeout:   time.Hour,
		IdleInterval:  time.Millisecond,
		IdleBackoff:   time.Millisecond,
		Runtime:       rt,
		Prober:        prober,
		Unloader:      unloader,
		Logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewWithConfig(cfg), rt, prober, unloader
}
