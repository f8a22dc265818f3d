package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "8081" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("cache ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Cache.Capacity != 512 {
		t.Errorf("cache capacity = %d", cfg.Cache.Capacity)
	}
	if cfg.Rate.RequestsPerSecond != 20 {
		t.Errorf("rps = %v", cfg.Rate.RequestsPerSecond)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not fail: %v", err)
	}
	if cfg.Data.PlansDir != "data/plans" {
		t.Errorf("plans dir = %q", cfg.Data.PlansDir)
	}
}

func TestLoadFileOverridesAndIngestSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: "9000"
cache:
  ttl: 30s
ingest:
  sources:
    tyler:
      - name: acme
        url: https://example.com/plans
        provider: Acme Power
        card_selector: ".card"
        name_selector: ".name"
        rate_selector: ".rate"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Server.Port)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("ttl = %v, want 30s", cfg.Cache.TTL)
	}

	sources := cfg.Ingest.Sources["tyler"]
	if len(sources) != 1 {
		t.Fatalf("tyler sources = %d, want 1", len(sources))
	}
	if sources[0].CardSel != ".card" || sources[0].Provider != "Acme Power" {
		t.Errorf("source = %+v", sources[0])
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger(LogConfig{Level: "debug", Development: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLogger(LogConfig{Level: "not-a-level"}); err == nil {
		t.Error("invalid level must error")
	}
}
