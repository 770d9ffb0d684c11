package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "nonexistent")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Mode != "release" {
		t.Errorf("Mode = %q, want release", cfg.Mode)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("PingPeriod = %v, want 54s", cfg.PingPeriod)
	}
	if cfg.SendBuffer != 32 {
		t.Errorf("SendBuffer = %d, want 32", cfg.SendBuffer)
	}
	if cfg.ReadLimit != 32768 {
		t.Errorf("ReadLimit = %d, want 32768", cfg.ReadLimit)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := []byte("mode: debug\nport: 9090\nping_period: 10s\ndatabase_url: postgres://localhost/pulse\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), body, 0o644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode != "debug" || cfg.Port != 9090 {
		t.Errorf("got mode=%q port=%d, want debug/9090", cfg.Mode, cfg.Port)
	}
	if cfg.PingPeriod != 10*time.Second {
		t.Errorf("PingPeriod = %v, want 10s", cfg.PingPeriod)
	}
	if cfg.DatabaseURL != "postgres://localhost/pulse" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	// Untouched keys keep their defaults.
	if cfg.SendBuffer != 32 {
		t.Errorf("SendBuffer = %d, want default 32", cfg.SendBuffer)
	}
}
