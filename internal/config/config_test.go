package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogFile == "" {
		t.Error("LogFile should not be empty")
	}
	if cfg.Timeouts.Connect() != 10*time.Second {
		t.Errorf("Timeouts.Connect() = %v, want 10s", cfg.Timeouts.Connect())
	}
	if cfg.Timeouts.Read() != 5*time.Second {
		t.Errorf("Timeouts.Read() = %v, want 5s", cfg.Timeouts.Read())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `log_level: debug
log_file: /tmp/gattview-test.log
timeouts:
  connect_ms: 3000
  read_ms: 1500
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogFile != "/tmp/gattview-test.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.Timeouts.Connect() != 3*time.Second {
		t.Errorf("Timeouts.Connect() = %v, want 3s", cfg.Timeouts.Connect())
	}
	if cfg.Timeouts.Read() != 1500*time.Millisecond {
		t.Errorf("Timeouts.Read() = %v, want 1.5s", cfg.Timeouts.Read())
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("log_level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	if cfg.Timeouts.ConnectMs != 10000 {
		t.Errorf("Timeouts.ConnectMs = %d, want default 10000", cfg.Timeouts.ConnectMs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("log_file: ~/logs/gattview.log\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	want := filepath.Join(home, "logs", "gattview.log")
	if cfg.LogFile != want {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"empty log file", func(c *Config) { c.LogFile = "" }, "log_file"},
		{"zero connect timeout", func(c *Config) { c.Timeouts.ConnectMs = 0 }, "connect_ms"},
		{"negative read timeout", func(c *Config) { c.Timeouts.ReadMs = -1 }, "read_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}
