// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}

	if cfg.Server.Address != "127.0.0.1:8788" {
		t.Errorf("expected address=127.0.0.1:8788, got %s", cfg.Server.Address)
	}

	if cfg.Admin.SocketPath != "/run/hondana/admin.sock" {
		t.Errorf("expected socket_path=/run/hondana/admin.sock, got %s", cfg.Admin.SocketPath)
	}

	if cfg.Cache.MaxEntries != 16 {
		t.Errorf("expected max_entries=16, got %d", cfg.Cache.MaxEntries)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_RequiresHondanaConfig(t *testing.T) {
	// Save and restore HONDANA_CONFIG.
	origConfig := os.Getenv("HONDANA_CONFIG")
	defer os.Setenv("HONDANA_CONFIG", origConfig)

	// Unset HONDANA_CONFIG - Load() should fail.
	os.Unsetenv("HONDANA_CONFIG")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when HONDANA_CONFIG not set, got nil")
	}

	expectedMsg := "HONDANA_CONFIG environment variable not set"
	if err.Error()[:len(expectedMsg)] != expectedMsg {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hondana.yaml")

	configContent := `
environment: staging

library:
  root: /custom/manga

server:
  address: 0.0.0.0:9000
  shutdown_timeout: 5s

admin:
  socket_path: /custom/admin.sock

cache:
  max_entries: 4
  sweep_interval: 10s
  max_idle: 45s
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}

	if cfg.Library.Root != "/custom/manga" {
		t.Errorf("expected root=/custom/manga, got %s", cfg.Library.Root)
	}

	if cfg.Server.Address != "0.0.0.0:9000" {
		t.Errorf("expected address=0.0.0.0:9000, got %s", cfg.Server.Address)
	}

	if cfg.Server.ShutdownTimeout.Std() != 5*time.Second {
		t.Errorf("expected shutdown_timeout=5s, got %s", cfg.Server.ShutdownTimeout.Std())
	}

	if cfg.Cache.MaxEntries != 4 {
		t.Errorf("expected max_entries=4, got %d", cfg.Cache.MaxEntries)
	}

	if cfg.Cache.MaxIdle.Std() != 45*time.Second {
		t.Errorf("expected max_idle=45s, got %s", cfg.Cache.MaxIdle.Std())
	}
}

func TestLoadFile_BadDuration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hondana.yaml")

	configContent := `
cache:
  sweep_interval: soon
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected error for unparseable duration, got nil")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hondana.yaml")

	configContent := `
environment: production

library:
  root: /default/manga

cache:
  max_entries: 8

production:
  library:
    root: /srv/manga
  server:
    address: 0.0.0.0:80
  cache:
    max_entries: 64
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	// Production overrides should be applied.
	if cfg.Library.Root != "/srv/manga" {
		t.Errorf("expected root=/srv/manga, got %s", cfg.Library.Root)
	}

	if cfg.Server.Address != "0.0.0.0:80" {
		t.Errorf("expected address=0.0.0.0:80, got %s", cfg.Server.Address)
	}

	if cfg.Cache.MaxEntries != 64 {
		t.Errorf("expected max_entries=64, got %d", cfg.Cache.MaxEntries)
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	// Verify that environment variables do NOT override config file values.
	// The config file is the single source of truth for deterministic configuration.

	origRoot := os.Getenv("HONDANA_ROOT")
	defer os.Setenv("HONDANA_ROOT", origRoot)

	os.Setenv("HONDANA_ROOT", "/env/manga")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "hondana.yaml")

	configContent := `
environment: development
library:
  root: /file/manga
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Library.Root != "/file/manga" {
		t.Errorf("expected root=/file/manga from file, got %s (env vars should not override)", cfg.Library.Root)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/manga",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/manga",
		},
		{
			input:    "${HONDANA_ROOT}/admin.sock",
			vars:     map[string]string{"HONDANA_ROOT": "/srv/manga"},
			expected: "/srv/manga/admin.sock",
		},
		{
			input:    "${MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid environment",
			modify: func(c *Config) {
				c.Environment = "invalid"
			},
			wantErr: true,
		},
		{
			name: "empty library root",
			modify: func(c *Config) {
				c.Library.Root = ""
			},
			wantErr: true,
		},
		{
			name: "empty socket path",
			modify: func(c *Config) {
				c.Admin.SocketPath = ""
			},
			wantErr: true,
		},
		{
			name: "zero cache capacity",
			modify: func(c *Config) {
				c.Cache.MaxEntries = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsurePaths(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.Library.Root = filepath.Join(tmpDir, "manga")
	cfg.Admin.SocketPath = filepath.Join(tmpDir, "run", "admin.sock")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}

	for _, path := range []string{cfg.Library.Root, filepath.Join(tmpDir, "run")} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("path %s not created: %v", path, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("path %s is not a directory", path)
		}
	}
}
