package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	LogFile  string        `yaml:"log_file"` // stdout belongs to the UI, so logs go to a file
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig holds the per-step connection deadlines.
type TimeoutConfig struct {
	ConnectMs int `yaml:"connect_ms"`
	ReadMs    int `yaml:"read_ms"`
}

// Connect returns the connect deadline as a duration.
func (t TimeoutConfig) Connect() time.Duration {
	return time.Duration(t.ConnectMs) * time.Millisecond
}

// Read returns the characteristic-read deadline as a duration.
func (t TimeoutConfig) Read() time.Duration {
	return time.Duration(t.ReadMs) * time.Millisecond
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gattview")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	home, _ := os.UserHomeDir()
	logFile := filepath.Join(home, ".local", "state", "gattview", "gattview.log")

	return &Config{
		LogLevel: "info",
		LogFile:  logFile,
		Timeouts: TimeoutConfig{
			ConnectMs: 10000,
			ReadMs:    5000,
		},
	}
}

// Load reads and parses a YAML config file. Missing fields are filled with
// defaults. Tilde (~) in log_file is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.LogFile = expandTilde(cfg.LogFile)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	if c.LogFile == "" {
		return fmt.Errorf("log_file must not be empty")
	}

	if c.Timeouts.ConnectMs <= 0 {
		return fmt.Errorf("timeouts.connect_ms must be > 0")
	}

	if c.Timeouts.ReadMs <= 0 {
		return fmt.Errorf("timeouts.read_ms must be > 0")
	}

	return nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
