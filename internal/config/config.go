package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sr25519-bridge/internal/logger"
	"sr25519-bridge/internal/ss58"
	"sr25519-bridge/internal/types"
)

const maxSigningContextLen = 64

// Manager handles configuration loading, validation, and management
type Manager struct{}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{}
}

// LoadConfig loads configuration from the specified file path, writing the
// defaults there first if the file does not exist
func (m *Manager) LoadConfig(filePath string) (*types.Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := m.CreateConfigFile(filePath, types.DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		logger.Info("Default configuration file created", "path", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	// Start from defaults so omitted sections keep sane values.
	cfg := types.DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := m.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// CreateConfigFile creates a new configuration file with the given config
func (m *Manager) CreateConfigFile(filePath string, cfg *types.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateConfig validates the configuration structure and values
func (m *Manager) ValidateConfig(cfg *types.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := validateBridgeConfig(&cfg.Bridge); err != nil {
		return fmt.Errorf("bridge config validation failed: %w", err)
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

func validateBridgeConfig(cfg *types.BridgeConfig) error {
	if cfg.SigningContext == "" {
		return fmt.Errorf("bridge.signing_context cannot be empty")
	}
	if len(cfg.SigningContext) > maxSigningContextLen {
		return fmt.Errorf("bridge.signing_context must be at most %d bytes", maxSigningContextLen)
	}
	for _, c := range []byte(cfg.SigningContext) {
		if c < 0x20 || c > 0x7e {
			return fmt.Errorf("bridge.signing_context must be printable ASCII")
		}
	}

	if cfg.SS58Prefix > ss58.MaxPrefix {
		return fmt.Errorf("bridge.ss58_prefix must be at most %d", ss58.MaxPrefix)
	}

	return nil
}

func validateLoggingConfig(cfg *types.LoggingConfig) error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[cfg.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if cfg.FileOutput && cfg.FileName == "" {
		return fmt.Errorf("logging.file_name is required when file_output is enabled")
	}

	return nil
}

// LoadConfig is a convenience function that creates a manager and loads config
func LoadConfig(filePath string) (*types.Config, error) {
	return NewManager().LoadConfig(filePath)
}
