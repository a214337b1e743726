package orch

import (
	"sync"
	"time"
)

// LeaseTable tracks keep-alive leases for loaded inference models. It is
// owned by the orchestrator; all mutation goes through its methods.
type LeaseTable struct {
	mu     sync.Mutex
	leases map[string]time.Time
	nowFn  func() time.Time
}

func NewLeaseTable() *LeaseTable {
	return &LeaseTable{leases: make(map[string]time.Time), nowFn: time.Now}
}

// Register records a keep-alive lease for model. A non-positive duration
// records an already-elapsed lease, making the model reclaimable on the
// next idle cycle.
func (t *LeaseTable) Register(model string, keepAlive time.Duration) {
	if model == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.nowFn()
	if keepAlive > 0 {
		t.leases[model] = now.Add(keepAlive)
	} else {
		t.leases[model] = now
	}
}

// Expired returns models whose lease deadline has elapsed.
func (t *LeaseTable) Expired(now time.Time) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for model, until := range t.leases {
		if !until.IsZero() && !until.After(now) {
			out = append(out, model)
		}
	}
	return out
}

// Release resets the lease for model after a successful unload.
func (t *LeaseTable) Release(model string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.leases, model)
}

// Snapshot returns a copy of all live leases for observability.
func (t *LeaseTable) Snapshot() []Lease {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Lease, 0, len(t.leases))
	for model, until := range t.leases {
		out = append(out, Lease{Model: model, KeepAliveUntil: until})
	}
	return out
}
