package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Push.Concurrency != 8 || cfg.Push.DispatchTimeout != 30*time.Second {
		t.Fatalf("unexpected push defaults: %+v", cfg.Push)
	}
	if cfg.Feed.ReconnectMin != time.Second {
		t.Fatalf("unexpected feed defaults: %+v", cfg.Feed)
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
http:
  addr: ":9999"
push:
  gateway_url: "http://push.local"
  concurrency: 3
feed:
  url: "ws://feed.local/signals"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Fatalf("unexpected addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Push.GatewayURL != "http://push.local" || cfg.Push.Concurrency != 3 {
		t.Fatalf("unexpected push config: %+v", cfg.Push)
	}
	if cfg.Feed.URL != "ws://feed.local/signals" {
		t.Fatalf("unexpected feed config: %+v", cfg.Feed)
	}
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7777")
	t.Setenv("PUSH_GATEWAY_URL", "http://env.push")
	t.Setenv("PUSH_DISPATCH_TIMEOUT", "5s")

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Addr != ":7777" {
		t.Fatalf("env override lost: %s", cfg.HTTP.Addr)
	}
	if cfg.Push.GatewayURL != "http://env.push" {
		t.Fatalf("env override lost: %s", cfg.Push.GatewayURL)
	}
	if cfg.Push.DispatchTimeout != 5*time.Second {
		t.Fatalf("env override lost: %s", cfg.Push.DispatchTimeout)
	}
}
