// Package config handles CLI configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	DefaultModel     string `yaml:"default_model"`
	DefaultNamespace string `yaml:"default_namespace,omitempty"`
	Organization     string `yaml:"organization,omitempty"`

	// BaseURL overrides the initial base URL. ChatBaseURL and
	// PipelineBaseURL override the two backends.
	BaseURL         string `yaml:"base_url,omitempty"`
	ChatBaseURL     string `yaml:"chat_base_url,omitempty"`
	PipelineBaseURL string `yaml:"pipeline_base_url,omitempty"`

	// Timeout is a Go duration string such as "90s".
	Timeout    string `yaml:"timeout,omitempty"`
	MaxRetries *int   `yaml:"max_retries,omitempty"`

	Headers map[string]string `yaml:"headers,omitempty"`
}

// DefaultConfigPath returns the default configuration file path for the current platform.
// - macOS/Linux: ~/.hyperbee/config.yaml
// - Windows: %USERPROFILE%\.hyperbee\config.yaml
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".hyperbee", "config.yaml")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("USERPROFILE")
	}
	return os.Getenv("HOME")
}

// LoadConfig loads configuration from the specified path.
// If the file doesn't exist, returns an empty config without error.
// Returns an error only if the file exists but cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if _, err := cfg.TimeoutDuration(); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to path, creating the parent directory.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// TimeoutDuration parses Timeout. An empty Timeout returns 0.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}
