package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"gattview/internal/ble"
	"gattview/internal/config"
	"gattview/internal/eventlog"
	"gattview/internal/perm"
	"gattview/internal/tui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/gattview/config.yaml)")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	// Logs go to a file; stdout belongs to the UI.
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer closeLog()

	// The adapter is created once and lives for the whole process.
	adapter := ble.NewTinygoAdapter()
	if err := adapter.Open(); err != nil {
		log.Fatalf("Failed to open BLE adapter: %v\n\nOn Linux, check that bluetooth.service is running and this user may use the radio.", err)
	}
	defer adapter.Close()

	events := eventlog.New(eventlog.NewSlogSink(logger))
	scans := ble.NewCoordinator(adapter, perm.New(), events)
	seq := ble.NewSequencer(adapter, scans, events, ble.SequencerOptions{
		ConnectTimeout: cfg.Timeouts.Connect(),
		ReadTimeout:    cfg.Timeouts.Read(),
	})

	// Consume the power-state stream for the process lifetime.
	go scans.Run()

	p := tea.NewProgram(tui.New(scans, seq, events), tea.WithAltScreen())
	notify := func() { p.Send(tui.RefreshMsg{}) }
	scans.SetNotify(notify)
	seq.SetNotify(notify)

	if _, err := p.Run(); err != nil {
		log.Fatalf("ui: %v", err)
	}
}

// loadConfig loads the config from the specified path, or falls back to the
// default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, nil
	}

	// No config file, use defaults
	return config.Default(), nil
}

// newLogger opens the configured log file and returns a slog logger plus a
// closer to defer.
func newLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})
	return slog.New(handler), f.Close, nil
}

// parseLevel converts a config level string to slog.Level.
func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
