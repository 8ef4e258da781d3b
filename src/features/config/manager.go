package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	path   string
}

// NewManager creates a new ConfigManager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Path returns the file the configuration was loaded from, if any.
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// ExternalStorageRoot returns the configured external storage root.
func (m *Manager) ExternalStorageRoot() string {
	return m.Get().ExternalStorageRoot
}

// JobsConfig returns the current jobs configuration.
func (m *Manager) JobsConfig() Jobs {
	return m.Get().Jobs
}

// Update updates the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"storage_root_changed", oldConfig.ExternalStorageRoot != config.ExternalStorageRoot,
			"scanner_mode_changed", oldConfig.Scanner.Mode != config.Scanner.Mode,
			"telegram_enabled_changed", oldConfig.Telegram.Enabled != config.Telegram.Enabled,
			"logger_enabled_changed", oldConfig.Logger.Enabled != config.Logger.Enabled,
		)
	}
}

// Reload re-reads the configuration file. On any error the current
// configuration is kept.
func (m *Manager) Reload() error {
	path := m.Path()
	if path == "" {
		return fmt.Errorf("configuration was not loaded from a file")
	}
	cfg, err := read(path)
	if err != nil {
		return err
	}
	m.Update(cfg)
	slog.Info("Configuration reloaded", "path", path, "storage_root", cfg.ExternalStorageRoot)
	return nil
}

// Follow reloads the configuration every time a change to its file is
// received on changes. It returns when ctx is done or changes is closed.
func (m *Manager) Follow(ctx context.Context, changes <-chan FileEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-changes:
			if !ok {
				return
			}
			if filepath.Clean(event.Path) != filepath.Clean(m.Path()) {
				continue
			}
			if err := m.Reload(); err != nil {
				slog.Error("Ignoring invalid configuration change", "path", event.Path, "error", err)
			}
		}
	}
}

// Save writes the current configuration to the specified file path.
func (m *Manager) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, err := os.Create(path)
	if err != nil {
		slog.Error("failed to create config file", "path", path, "error", err)
		return err
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(m.config); err != nil {
		slog.Error("failed to encode config", "path", path, "error", err)
		return err
	}

	slog.Info("Configuration saved successfully", "path", path)
	return nil
}

// EnsureDirectories creates the job log directory when job logging is on.
func (m *Manager) EnsureDirectories() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if !cfg.Jobs.Log {
		return nil
	}
	if err := os.MkdirAll(cfg.Jobs.LogPath, 0755); err != nil {
		return fmt.Errorf("failed to create job log directory %s: %w", cfg.Jobs.LogPath, err)
	}

	slog.Info("Required directories created/verified", "job_logs", cfg.Jobs.LogPath)
	return nil
}

// redactedCfg gets a redacted copy of the Config
func (m *Manager) redactedCfg() Config {
	var cfgCpy = *m.config
	if cfgCpy.Telegram.Token != "" {
		cfgCpy.Telegram.Token = "<redacted>"
	}
	return cfgCpy
}

// GetJSON returns the current configuration as a JSON string.
func (m *Manager) GetJSON() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jsonBytes, err := json.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to JSON", "error", err)
		return err.Error()
	}
	return string(jsonBytes)
}

func (m *Manager) GetYAML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	yamlBytes, err := yaml.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
