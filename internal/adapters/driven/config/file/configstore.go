// Package file provides a TOML-backed configuration store for default
// run parameters.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/docforge/docforge/internal/core/domain"
	"github.com/docforge/docforge/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using
// TOML. Fields missing from the file keep their domain default, so a
// partially written config file stays usable.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.docforge/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, ".docforge")
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Defaults returns the stored default configuration. A missing file yields
// the domain defaults; a present file overrides only the fields it sets.
func (s *ConfigStore) Defaults() (domain.ProcessConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := domain.DefaultProcessConfig()

	raw, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return domain.ProcessConfig{}, fmt.Errorf("read config %s: %w", s.filePath, err)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return domain.ProcessConfig{}, fmt.Errorf("parse config %s: %w", s.filePath, err)
	}

	if err := cfg.Validate(); err != nil {
		return domain.ProcessConfig{}, fmt.Errorf("config %s: %w", s.filePath, err)
	}
	return cfg, nil
}

// SaveDefaults persists a new default configuration. Invalid configurations
// are rejected before anything is written.
func (s *ConfigStore) SaveDefaults(cfg domain.ProcessConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	raw, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.filePath, raw, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", s.filePath, err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
