package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"orchd/pkg/types"
)

// client is a thin wrapper over the daemon HTTP API.
type client struct {
	base string
	http *http.Client
}

func newClient(base string) *client {
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *client) get(path string, out any) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) post(path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	resp, err := c.http.Post(c.base+path, "application/json", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(resp *http.Response) error {
	var e types.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
		return fmt.Errorf("%s (status %d)", e.Error, resp.StatusCode)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}

func buildRootCmd() *cobra.Command {
	defaultAddr := "http://127.0.0.1:9090"
	if v := os.Getenv("ORCHD_URL"); v != "" {
		defaultAddr = v
	}
	var addr string

	root := &cobra.Command{
		Use:           "orchctl",
		Short:         "Control a running orchd daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", defaultAddr, "Base URL of the orchd daemon (defaults ORCHD_URL)")

	statusCmd := &cobra.Command{Use: "status", Short: "Show desired/actual state of every service", RunE: func(cmd *cobra.Command, args []string) error {
		var st types.StatusResponse
		if err := newClient(addr).get("/status", &st); err != nil {
			return err
		}
		fmt.Printf("auto_lifecycle=%v idle_timeout=%ds uptime=%ds\n", st.AutoLifecycle, st.IdleTimeoutSeconds, st.UptimeSeconds)
		for _, s := range st.Services {
			last := "-"
			if s.LastUsed > 0 {
				last = time.Unix(s.LastUsed, 0).Format(time.RFC3339)
			}
			fmt.Printf("%-20s desired=%-4s actual=%-9s idle_eligible=%-5v last_used=%s deps=%v\n",
				s.Name, s.Desired, s.Actual, s.IdleEligible, last, s.Dependencies)
		}
		return nil
	}}

	ensureCmd := &cobra.Command{Use: "ensure <service>...", Short: "Start services and their dependencies, wait until ready", Args: cobra.MinimumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		var resp types.EnsureResponse
		err := newClient(addr).post("/services/ensure", types.EnsureRequest{Services: args}, &resp)
		if err != nil {
			return err
		}
		fmt.Printf("ready=%v order=%v\n", resp.Ready, resp.Order)
		if !resp.Ready {
			return fmt.Errorf("services did not become ready")
		}
		return nil
	}}

	stopCmd := &cobra.Command{Use: "stop <service>", Short: "Stop one service (dependents are left running)", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient(addr).post("/services/"+args[0]+"/stop", nil, nil); err != nil {
			return err
		}
		fmt.Printf("stopped %s\n", args[0])
		return nil
	}}

	healthCmd := &cobra.Command{Use: "health <service>", Short: "Classify one service's health", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		var resp types.HealthResponse
		if err := newClient(addr).get("/services/"+args[0]+"/health", &resp); err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", resp.Name, resp.State)
		if resp.State != "healthy" {
			os.Exit(1)
		}
		return nil
	}}

	leasesCmd := &cobra.Command{Use: "leases", Short: "List active model keep-alive leases", RunE: func(cmd *cobra.Command, args []string) error {
		var body struct {
			Leases []types.LeaseStatus `json:"leases"`
		}
		if err := newClient(addr).get("/leases", &body); err != nil {
			return err
		}
		if len(body.Leases) == 0 {
			fmt.Println("no active leases")
			return nil
		}
		for _, l := range body.Leases {
			fmt.Printf("%-30s keep_alive_until=%s\n", l.Model, time.Unix(l.KeepAliveUntil, 0).Format(time.RFC3339))
		}
		return nil
	}}

	leaseCmd := &cobra.Command{Use: "lease <model> [keep-alive-seconds]", Short: "Register a keep-alive lease for a loaded model", Args: cobra.RangeArgs(1, 2), RunE: func(cmd *cobra.Command, args []string) error {
		req := types.LeaseRequest{Model: args[0]}
		if len(args) == 2 {
			n, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid keep-alive seconds %q", args[1])
			}
			req.KeepAliveSeconds = n
		}
		if err := newClient(addr).post("/leases", req, nil); err != nil {
			return err
		}
		fmt.Printf("lease registered for %s\n", req.Model)
		return nil
	}}

	root.AddCommand(statusCmd, ensureCmd, stopCmd, healthCmd, leasesCmd, leaseCmd)
	return root
}

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
