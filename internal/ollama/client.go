package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Client talks to an Ollama-compatible inference runtime over HTTP.
// It covers only what the orchestrator needs: a readiness probe and a
// best-effort model unload.
type Client struct {
	baseURL    string
	reqTimeout time.Duration
	httpClient *http.Client
}

// New constructs a client for baseURL. All requests carry context-based
// timeouts; the transport only bounds connection establishment.
func New(baseURL string, reqTimeout, connectTimeout time.Duration) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		reqTimeout: reqTimeout,
		httpClient: &http.Client{Transport: tr, Timeout: 0},
	}
}

// Probe checks that the runtime answers its model listing endpoint.
func (c *Client) Probe(ctx context.Context) error {
	if c.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reqTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("probe: unexpected status %s", resp.Status)
	}
	return nil
}

// zeroKeepAlives are the payload variants meaning "release the model now".
// Runtime versions disagree on which literal they accept, so each is tried
// in order until one is acknowledged.
var zeroKeepAlives = []any{0, "0", "0s"}

// Unload asks the runtime to release a loaded model immediately by issuing
// a generation request with a zero keep-alive.
func (c *Client) Unload(ctx context.Context, model string) error {
	if model == "" {
		return errors.New("unload: empty model")
	}
	var lastErr error
	for _, ka := range zeroKeepAlives {
		if err := c.generateKeepAlive(ctx, model, ka); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("unload %s: %w", model, lastErr)
}

func (c *Client) generateKeepAlive(ctx context.Context, model string, keepAlive any) error {
	if c.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reqTimeout)
		defer cancel()
	}
	payload := map[string]any{"model": model, "keep_alive": keepAlive}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("keep_alive=%v: unexpected status %s", keepAlive, resp.Status)
	}
	return nil
}
