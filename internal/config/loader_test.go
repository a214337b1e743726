package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeTemp(t, "orchd.yaml", `
addr: ":9090"
ollama_url: "http://127.0.0.1:11434"
idle_timeout_seconds: 3600
precedence: [redis, postgres, qdrant]
pinned_on: [redis]
services:
  - name: redis
    idle_eligible: false
  - name: hub-gateway
    depends_on: [redis]
    probe_url: "http://127.0.0.1:8080/readyz"
    probe_timeout_seconds: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.IdleTimeoutSeconds != 3600 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if len(cfg.Services) != 2 || cfg.Services[1].DependsOn[0] != "redis" {
		t.Fatalf("services=%+v", cfg.Services)
	}
	if cfg.Services[0].IdleEligible == nil || *cfg.Services[0].IdleEligible {
		t.Fatalf("redis must be idle_eligible=false, got %+v", cfg.Services[0].IdleEligible)
	}
	if cfg.Services[1].IdleEligible != nil {
		t.Fatalf("omitted idle_eligible must stay nil")
	}
	if cfg.Services[1].ProbeTimeoutSeconds != 3 {
		t.Fatalf("probe timeout=%d", cfg.Services[1].ProbeTimeoutSeconds)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeTemp(t, "orchd.json", `{
  "addr": ":9191",
  "auto_lifecycle": false,
  "services": [{"name": "qdrant", "probe_url": "http://q/collections"}]
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9191" {
		t.Fatalf("addr=%s", cfg.Addr)
	}
	if cfg.AutoLifecycle == nil || *cfg.AutoLifecycle {
		t.Fatalf("auto_lifecycle must parse as false")
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeTemp(t, "orchd.toml", `
addr = ":9292"
precedence = ["redis"]

[[services]]
name = "redis"
idle_eligible = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9292" || len(cfg.Services) != 1 {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "orchd.ini", "addr=:9090")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported extension error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestValidateRejectsDuplicateServices(t *testing.T) {
	path := writeTemp(t, "orchd.yaml", `
services:
  - name: redis
  - name: redis
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestValidateRejectsEmptyName(t *testing.T) {
	path := writeTemp(t, "orchd.yaml", `
services:
  - depends_on: [redis]
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected empty name error")
	}
}
