package httpapi

import (
	"context"
)

// serverBaseCtx is the daemon-wide context handlers combine with their
// request context, so shutting orchd down also cancels in-flight ensure
// and stop work. Defaults to Background if never set.
var serverBaseCtx = context.Background()

// SetBaseContext installs the daemon-wide base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context canceled as soon as either a or b is
// done. Handlers must call the returned cancel when they finish so the
// watcher goroutine is released.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		}
	}()
	return ctx, cancel
}
