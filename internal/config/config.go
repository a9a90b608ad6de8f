// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

// Package config loads host configuration from file and flags.
package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/plugkit/plugkit/internal/xdg"
)

// Config holds the plugkit host configuration.
type Config struct {
	// PluginsDir is the directory scanned for candidate modules.
	PluginsDir string `koanf:"plugins-dir"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log-format"`

	// MetricsAddr is the metrics/health HTTP listen address; empty
	// disables the server.
	MetricsAddr string `koanf:"metrics-addr"`

	// APIVersion is the host API version matched against descriptor
	// api-version constraints.
	APIVersion string `koanf:"api-version"`
}

// Defaults for the host configuration.
const (
	DefaultPluginsDir  = "plugins"
	DefaultLogFormat   = "json"
	DefaultMetricsAddr = ""
	DefaultAPIVersion  = "1.0.0"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PluginsDir:  DefaultPluginsDir,
		LogFormat:   DefaultLogFormat,
		MetricsAddr: DefaultMetricsAddr,
		APIVersion:  DefaultAPIVersion,
	}
}

// DefaultPath returns the XDG config file path if one exists, "" otherwise.
func DefaultPath() string {
	path := filepath.Join(xdg.ConfigDir(), "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Load builds the configuration: defaults, then the YAML config file if
// given, then flag overrides. A configured-but-missing file is an error;
// an empty path falls back to the XDG config file, skipping the file
// layer when none exists.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return cfg, oops.With("path", path).Hint("config file not readable").Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, oops.With("path", path).Hint("failed to parse config file").Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return cfg, oops.Hint("failed to load flag overrides").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, oops.Hint("failed to unmarshal config").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks configuration constraints.
func (c Config) Validate() error {
	if c.PluginsDir == "" {
		return oops.New("plugins-dir is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.With("log-format", c.LogFormat).New("log-format must be 'json' or 'text'")
	}
	return nil
}
