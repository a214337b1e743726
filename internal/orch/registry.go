package orch

import (
	"sync"
	"time"
)

// Registry holds the mutable per-service state: desired state, the last
// observed health classification and the last-used timestamp. It is pure
// in-memory bookkeeping — no I/O happens here — and a single mutex
// serializes all access.
type Registry struct {
	mu     sync.RWMutex
	states map[string]*ServiceState
	nowFn  func() time.Time
}

// NewRegistry creates entries for every known service with actual=unknown
// and desired=off. Entries are never deleted while the process runs.
func NewRegistry(names []string) *Registry {
	r := &Registry{
		states: make(map[string]*ServiceState, len(names)),
		nowFn:  time.Now,
	}
	for _, n := range names {
		r.states[n] = &ServiceState{Desired: DesiredOff, Actual: HealthUnknown}
	}
	return r
}

// ensure returns the entry for name, creating it lazily for names that
// were not in the catalog (unknown services degrade gracefully).
func (r *Registry) ensure(name string) *ServiceState {
	st, ok := r.states[name]
	if !ok {
		st = &ServiceState{Desired: DesiredOff, Actual: HealthUnknown}
		r.states[name] = st
	}
	return st
}

// Touch records that name was just requested.
func (r *Registry) Touch(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure(name).LastUsed = r.nowFn()
}

// SetActual records the latest health classification for name.
func (r *Registry) SetActual(name string, state HealthState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure(name).Actual = state
}

// SetDesired records administrative intent for name.
func (r *Registry) SetDesired(name string, d DesiredState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure(name).Desired = d
}

// Get returns a copy of the state for name.
func (r *Registry) Get(name string) (ServiceState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[name]
	if !ok {
		return ServiceState{}, false
	}
	return *st, true
}

// Snapshot returns a copy of all entries for observability.
func (r *Registry) Snapshot() map[string]ServiceState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]ServiceState, len(r.states))
	for name, st := range r.states {
		out[name] = *st
	}
	return out
}
