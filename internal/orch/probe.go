package orch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const defaultProbeTimeout = 5 * time.Second

// Prober performs application-level readiness checks.
type Prober interface {
	Probe(ctx context.Context, url string, timeout time.Duration) error
}

// HTTPProber issues bounded GET requests against readiness endpoints.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber builds a prober whose transport bounds connection
// establishment; per-probe deadlines come from the caller via context.
func NewHTTPProber(connectTimeout time.Duration) *HTTPProber {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
	return &HTTPProber{client: &http.Client{Transport: tr, Timeout: 0}}
}

// Probe succeeds when url answers 2xx within timeout.
func (p *HTTPProber) Probe(ctx context.Context, url string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("probe %s: unexpected status %s", url, resp.Status)
	}
	return nil
}
