package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	raw := `
server:
  port: "9090"
log:
  level: debug
  format: pretty
session:
  grace: 15m
  sweep: 30s
redis:
  addr: localhost:6379
  db: 2
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
	if got := Duration(cfg.Session.Grace, time.Hour); got != 15*time.Minute {
		t.Fatalf("expected 15m grace, got %v", got)
	}
	if got := Duration(cfg.Session.Sweep, time.Hour); got != 30*time.Second {
		t.Fatalf("expected 30s sweep, got %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDurationFallback(t *testing.T) {
	if got := Duration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty value, got %v", got)
	}
	if got := Duration("garbage", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for invalid value, got %v", got)
	}
	if got := Duration("2h", time.Minute); got != 2*time.Hour {
		t.Fatalf("expected parsed value, got %v", got)
	}
}
