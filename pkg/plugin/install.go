// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package plugin

import (
	"log/slog"

	"github.com/plugkit/plugkit/internal/seal"
)

// InstallContext carries the host-assigned identity the manager injects
// into a plugin exactly once, before any hook runs. The zero value is
// invalid; NewInstallContext is the only way to mint a usable one, and it
// requires the manager's seal token, which code outside this module cannot
// obtain. Plugin code must never call Install itself.
type InstallContext struct {
	valid         bool
	name          string
	dir           string
	configFile    string
	defaultConfig string
	hasDefault    bool
	api           any
	logger        *slog.Logger
	lookup        LookupFunc
}

// InstallOption customizes an InstallContext.
type InstallOption func(*InstallContext)

// WithDefaultConfig attaches the module's embedded default configuration
// payload.
func WithDefaultConfig(payload string) InstallOption {
	return func(ic *InstallContext) {
		ic.defaultConfig = payload
		ic.hasDefault = true
	}
}

// WithConfigFileName overrides the plugin's config file name.
func WithConfigFileName(name string) InstallOption {
	return func(ic *InstallContext) {
		if name != "" {
			ic.configFile = name
		}
	}
}

// WithAPI attaches the host API handle exposed to the plugin.
func WithAPI(api any) InstallOption {
	return func(ic *InstallContext) {
		ic.api = api
	}
}

// WithLookup attaches the by-name lookup handle backing
// Base.GetPluginByName.
func WithLookup(fn LookupFunc) InstallOption {
	return func(ic *InstallContext) {
		ic.lookup = fn
	}
}

// WithLogger attaches the plugin-scoped logger.
func WithLogger(logger *slog.Logger) InstallOption {
	return func(ic *InstallContext) {
		ic.logger = logger
	}
}

// NewInstallContext mints an installation context. The seal token restricts
// callers to this module; the manager holds the only call site.
func NewInstallContext(_ seal.Token, name, dir string, opts ...InstallOption) InstallContext {
	ic := InstallContext{
		valid: true,
		name:  name,
		dir:   dir,
	}
	for _, opt := range opts {
		opt(&ic)
	}
	return ic
}
