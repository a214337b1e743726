package runtime

import "context"

// Status is the coarse container-level state reported by the supervisor.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusUnknown Status = "unknown"
)

// ContainerRuntime abstracts the control plane that owns the actual
// processes (container engine, process manager, cloud API). Every call
// must be bounded: implementations apply their own timeout on top of ctx,
// and callers treat any error as "state not confirmed".
type ContainerRuntime interface {
	// Status reports whether the named container is currently running.
	Status(ctx context.Context, name string) (Status, error)
	// Start launches the named container. It does not wait for readiness.
	Start(ctx context.Context, name string) error
	// Stop halts the named container.
	Stop(ctx context.Context, name string) error
}
