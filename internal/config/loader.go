package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ServiceSpec declares one managed service in the catalog.
type ServiceSpec struct {
	Name      string   `json:"name" yaml:"name" toml:"name"`
	DependsOn []string `json:"depends_on" yaml:"depends_on" toml:"depends_on"`
	// IdleEligible defaults to true when omitted; pinned infrastructure
	// (relational store, cache/queue) sets it to false explicitly.
	IdleEligible *bool `json:"idle_eligible" yaml:"idle_eligible" toml:"idle_eligible"`
	// ProbeURL is an optional application-level readiness endpoint.
	// Absence means "container running implies ready".
	ProbeURL            string `json:"probe_url" yaml:"probe_url" toml:"probe_url"`
	ProbeTimeoutSeconds int    `json:"probe_timeout_seconds" yaml:"probe_timeout_seconds" toml:"probe_timeout_seconds"`
}

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr       string `json:"addr" yaml:"addr" toml:"addr"`
	DockerHost string `json:"docker_host" yaml:"docker_host" toml:"docker_host"`
	OllamaURL  string `json:"ollama_url" yaml:"ollama_url" toml:"ollama_url"`

	// AutoLifecycle defaults to true when omitted; when false the daemon
	// assumes services are externally managed and never starts or stops them.
	AutoLifecycle *bool `json:"auto_lifecycle" yaml:"auto_lifecycle" toml:"auto_lifecycle"`

	IdleTimeoutSeconds  int64 `json:"idle_timeout_seconds" yaml:"idle_timeout_seconds" toml:"idle_timeout_seconds"`
	IdleCheckSeconds    int64 `json:"idle_check_seconds" yaml:"idle_check_seconds" toml:"idle_check_seconds"`
	WaitTimeoutSeconds  int64 `json:"wait_timeout_seconds" yaml:"wait_timeout_seconds" toml:"wait_timeout_seconds"`
	PollIntervalSeconds int64 `json:"poll_interval_seconds" yaml:"poll_interval_seconds" toml:"poll_interval_seconds"`

	// Precedence is the global startup priority list; resolved services in
	// it start in this order, everything else follows in declaration order.
	Precedence []string `json:"precedence" yaml:"precedence" toml:"precedence"`
	// PinnedOn services have desired state "on" and are never auto-stopped.
	PinnedOn []string `json:"pinned_on" yaml:"pinned_on" toml:"pinned_on"`

	Services []ServiceSpec `json:"services" yaml:"services" toml:"services"`

	// MaxBodyBytes caps JSON request bodies; 0 keeps the built-in default.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	seen := make(map[string]bool, len(c.Services))
	for _, svc := range c.Services {
		if svc.Name == "" {
			return fmt.Errorf("service with empty name")
		}
		if seen[svc.Name] {
			return fmt.Errorf("duplicate service %q", svc.Name)
		}
		seen[svc.Name] = true
	}
	return nil
}
