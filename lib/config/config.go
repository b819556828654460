// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Hondana services.
//
// Configuration is loaded from a single file specified by:
//   - HONDANA_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures deterministic,
// auditable configuration with no hidden overrides.
//
// The config file may contain environment-specific sections (development,
// staging, production) that override base values when the environment matches.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "45s" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the master configuration for Hondana.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Library configures the manga library location.
	Library LibraryConfig `yaml:"library"`

	// Server configures the HTTP content server.
	Server ServerConfig `yaml:"server"`

	// Admin configures the administrative Unix socket.
	Admin AdminConfig `yaml:"admin"`

	// Cache configures the archive handle cache.
	Cache CacheConfig `yaml:"cache"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Library *LibraryConfig `yaml:"library,omitempty"`
	Server  *ServerConfig  `yaml:"server,omitempty"`
	Admin   *AdminConfig   `yaml:"admin,omitempty"`
	Cache   *CacheConfig   `yaml:"cache,omitempty"`
}

// LibraryConfig configures the manga library location.
type LibraryConfig struct {
	// Root is the library root directory. Each title is a directory
	// directly below it.
	Root string `yaml:"root"`
}

// ServerConfig configures the HTTP content server.
type ServerConfig struct {
	// Address is the listen address for the content endpoint.
	// Default: 127.0.0.1:8788
	Address string `yaml:"address"`

	// ShutdownTimeout is how long a graceful shutdown may take before
	// in-flight requests are abandoned.
	// Default: 10s
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// AdminConfig configures the administrative Unix socket.
type AdminConfig struct {
	// SocketPath is the Unix socket path for admin requests.
	// Default: /run/hondana/admin.sock
	SocketPath string `yaml:"socket_path"`
}

// CacheConfig configures the archive handle cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of open archive handles.
	// Default: 16
	MaxEntries int `yaml:"max_entries"`

	// SweepInterval is how often idle handles are checked. Zero
	// disables the background sweep.
	// Default: 30s
	SweepInterval Duration `yaml:"sweep_interval"`

	// MaxIdle is the idle time after which a handle is closed by the
	// sweep. Zero disables idle eviction.
	// Default: 2m
	MaxIdle Duration `yaml:"max_idle"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Environment: Development,
		Library: LibraryConfig{
			Root: filepath.Join(homeDir, "manga"),
		},
		Server: ServerConfig{
			Address:         "127.0.0.1:8788",
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Admin: AdminConfig{
			SocketPath: "/run/hondana/admin.sock",
		},
		Cache: CacheConfig{
			MaxEntries:    16,
			SweepInterval: Duration(30 * time.Second),
			MaxIdle:       Duration(2 * time.Minute),
		},
	}
}

// Load loads configuration from the HONDANA_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if HONDANA_CONFIG is not set, this fails.
// This ensures deterministic, auditable configuration with no hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("HONDANA_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("HONDANA_CONFIG environment variable not set; " +
			"set it to the path of your hondana.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do not
// override config values - this ensures deterministic, auditable configuration.
// The only expansion performed is ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Library != nil {
		if overrides.Library.Root != "" {
			c.Library.Root = overrides.Library.Root
		}
	}

	if overrides.Server != nil {
		if overrides.Server.Address != "" {
			c.Server.Address = overrides.Server.Address
		}
		if overrides.Server.ShutdownTimeout != 0 {
			c.Server.ShutdownTimeout = overrides.Server.ShutdownTimeout
		}
	}

	if overrides.Admin != nil {
		if overrides.Admin.SocketPath != "" {
			c.Admin.SocketPath = overrides.Admin.SocketPath
		}
	}

	if overrides.Cache != nil {
		if overrides.Cache.MaxEntries != 0 {
			c.Cache.MaxEntries = overrides.Cache.MaxEntries
		}
		if overrides.Cache.SweepInterval != 0 {
			c.Cache.SweepInterval = overrides.Cache.SweepInterval
		}
		if overrides.Cache.MaxIdle != 0 {
			c.Cache.MaxIdle = overrides.Cache.MaxIdle
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HONDANA_ROOT": c.Library.Root,
		"HOME":         os.Getenv("HOME"),
	}

	c.Library.Root = expandVars(c.Library.Root, vars)
	vars["HONDANA_ROOT"] = c.Library.Root // Update for dependent paths.

	c.Admin.SocketPath = expandVars(c.Admin.SocketPath, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Library.Root == "" {
		errs = append(errs, fmt.Errorf("library.root is required"))
	}

	if c.Server.Address == "" {
		errs = append(errs, fmt.Errorf("server.address is required"))
	}

	if c.Admin.SocketPath == "" {
		errs = append(errs, fmt.Errorf("admin.socket_path is required"))
	}

	if c.Cache.MaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("cache.max_entries must be positive"))
	}
	if c.Cache.SweepInterval < 0 {
		errs = append(errs, fmt.Errorf("cache.sweep_interval must not be negative"))
	}
	if c.Cache.MaxIdle < 0 {
		errs = append(errs, fmt.Errorf("cache.max_idle must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the library root and the admin socket's parent
// directory if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Library.Root,
		filepath.Dir(c.Admin.SocketPath),
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
