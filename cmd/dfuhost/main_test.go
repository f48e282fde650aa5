package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshp123/dfuhost/internal/config"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Core.GRPCAddr != config.DefaultGRPCAddr || cfg.Core.HTTPAddr != config.DefaultHTTPAddr || cfg.Core.LogLevel != config.DefaultLogLevel {
		t.Fatalf("expected defaults, got %+v", cfg.Core)
	}
	if cfg.MQTT != nil {
		t.Fatalf("mqtt must stay disabled by default")
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("core:\n  grpc_addr: 127.0.0.1:9100\n  log_level: debug\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Core.GRPCAddr != "127.0.0.1:9100" || cfg.Core.LogLevel != "debug" {
		t.Fatalf("unexpected core config: %+v", cfg.Core)
	}
	if cfg.Core.HTTPAddr != config.DefaultHTTPAddr {
		t.Fatalf("expected default http addr, got %q", cfg.Core.HTTPAddr)
	}
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("core:\n  log_level: loud\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected error for invalid log level")
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("DFUHOST_TEST_VALUE", "")
	if got := envOrDefault("DFUHOST_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}

	t.Setenv("DFUHOST_TEST_VALUE", "set")
	if got := envOrDefault("DFUHOST_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected env value, got %q", got)
	}
}
