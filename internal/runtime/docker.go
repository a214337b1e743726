package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

const defaultCallTimeout = 30 * time.Second

// DockerRuntime drives containers through the Docker Engine API.
type DockerRuntime struct {
	cli         *client.Client
	callTimeout time.Duration
	stopTimeout int // seconds handed to the engine for graceful stop
}

// NewDockerRuntime connects to the engine at host (empty = environment
// defaults, e.g. DOCKER_HOST or the local socket).
func NewDockerRuntime(host string, callTimeout time.Duration) (*DockerRuntime, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &DockerRuntime{cli: cli, callTimeout: callTimeout, stopTimeout: 10}, nil
}

func (d *DockerRuntime) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.callTimeout)
}

// Status inspects the named container. A container the engine does not
// know about counts as stopped, not as an error.
func (d *DockerRuntime) Status(ctx context.Context, name string) (Status, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	info, err := d.cli.ContainerInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return StatusStopped, nil
		}
		return StatusUnknown, fmt.Errorf("inspect %s: %w", name, err)
	}
	if info.State != nil && info.State.Running {
		return StatusRunning, nil
	}
	return StatusStopped, nil
}

func (d *DockerRuntime) Start(ctx context.Context, name string) error {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	if err := d.cli.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	return nil
}

func (d *DockerRuntime) Stop(ctx context.Context, name string) error {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	timeout := d.stopTimeout
	if err := d.cli.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("stop %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying client connection.
func (d *DockerRuntime) Close() error { return d.cli.Close() }
