// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

// Package plugin defines the surface third-party plugins build against:
// lifecycle hooks, event and listener types, the entry-type catalog, and
// the host-assigned installation state.
package plugin

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

// Plugin is the capability contract every entry type must satisfy.
//
// Entry types embed Base, which supplies Install and the host-assigned
// accessors; implementations add the two lifecycle hooks. No method other
// than accessors on Base may be called before OnLoad runs.
type Plugin interface {
	// OnLoad is called once after the manager has installed the plugin's
	// name, directory, and default configuration. Interacting with the
	// host is only safe from this point on. Returning an error fails the
	// load; the plugin is rolled back and OnUnload is invoked.
	OnLoad() error

	// OnUnload is called when the plugin is unloaded: at host shutdown,
	// on explicit unload, or after a failed load. It must release any
	// resources the plugin acquired.
	OnUnload() error

	// Install applies the host-assigned installation state. Implemented
	// by Base; the manager is the only caller able to mint a valid
	// InstallContext.
	Install(ic InstallContext) error

	// Name returns the host-assigned plugin name, or "" before install.
	Name() string
}

// LoadAware marks a plugin that wants to know when the load batch has
// completed.
type LoadAware interface {
	// OnAllPluginsLoaded is called after every candidate in the load
	// batch has been attempted. An error is logged by the manager and
	// does not unload the plugin.
	OnAllPluginsLoaded() error
}

// UsesOtherPlugins marks a plugin that may query other plugins by name.
// It includes LoadAware because lookup is only permitted once the batch
// completes. The manifest must additionally grant the "plugins.lookup"
// capability. UsesPlugins carries no behavior; implement it as an empty
// method.
type UsesOtherPlugins interface {
	LoadAware
	UsesPlugins()
}

// HasListeners marks a plugin that declares handler bindings. The manager
// registers the returned listeners immediately after a successful OnLoad;
// a malformed handler fails the plugin's load.
type HasListeners interface {
	Listeners() []*Listener
}

// LookupFunc is the by-name lookup handle the manager injects at install
// time. The handle carries the requesting plugin's identity, so the
// manager can enforce the lookup capability per caller.
type LookupFunc func(name string) (Plugin, bool, error)

// Base carries the host-assigned installation state for a plugin. Entry
// types embed it (by pointer-receiver methods, so embed as a value and
// implement Plugin on the pointer).
type Base struct {
	installed     bool
	name          string
	dir           string
	configFile    string
	defaultConfig string
	hasDefault    bool
	api           any
	logger        *slog.Logger
	lookup        LookupFunc
}

// Install applies the installation context. It returns an error for a
// context not minted by the manager, or if the plugin is already
// installed; the name is set exactly once.
func (b *Base) Install(ic InstallContext) error {
	if !ic.valid {
		return oops.Code("INSTANTIATION_ERROR").New("install context was not issued by the manager")
	}
	if b.installed {
		return oops.Code("INSTANTIATION_ERROR").With("plugin", b.name).New("plugin already installed")
	}
	b.installed = true
	b.name = ic.name
	b.dir = ic.dir
	b.configFile = ic.configFile
	b.defaultConfig = ic.defaultConfig
	b.hasDefault = ic.hasDefault
	b.api = ic.api
	b.logger = ic.logger
	b.lookup = ic.lookup
	return nil
}

// Name returns the host-assigned name, or "" before installation. Unlike
// the other accessors this is safe to call at any time; the manager uses
// it to locate the plugin in its registry.
func (b *Base) Name() string {
	return b.name
}

// Dir returns the plugin's install directory.
func (b *Base) Dir() string {
	b.ensureInstalled()
	return b.dir
}

// API returns the host API handle.
func (b *Base) API() any {
	b.ensureInstalled()
	return b.api
}

// Logger returns a logger scoped with the plugin's name.
func (b *Base) Logger() *slog.Logger {
	b.ensureInstalled()
	if b.logger == nil {
		return slog.Default().With("plugin", b.name)
	}
	return b.logger
}

// GetPluginByName returns the loaded plugin registered under name, or
// false for a name that is not loaded. The outer plugin must implement
// UsesOtherPlugins and hold the "plugins.lookup" grant; the call fails
// with NOT_READY until the load batch completes.
func (b *Base) GetPluginByName(name string) (Plugin, bool, error) {
	b.ensureInstalled()
	if b.lookup == nil {
		return nil, false, oops.Code("CAPABILITY_ERROR").With("plugin", b.name).
			New("no lookup handle was installed")
	}
	return b.lookup(name)
}

// DefaultConfig returns the embedded default configuration payload and
// whether the module shipped one. The payload is opaque text; the host
// never parses it.
func (b *Base) DefaultConfig() (string, bool) {
	b.ensureInstalled()
	return b.defaultConfig, b.hasDefault
}

// ConfigFileName returns the configured config file name, "config.yml"
// unless the descriptor overrides it.
func (b *Base) ConfigFileName() string {
	if b.configFile == "" {
		return DefaultConfigFileName
	}
	return b.configFile
}

// ConfigPath returns the on-disk location of the plugin's configuration
// file: {dir}/{name}/{configFileName}.
func (b *Base) ConfigPath() string {
	b.ensureInstalled()
	return filepath.Join(b.dir, b.name, b.ConfigFileName())
}

// WriteDefaultConfig materializes the embedded default configuration at
// ConfigPath. An existing file is never overwritten. It returns an error
// if the module shipped no default configuration or the write fails.
func (b *Base) WriteDefaultConfig() error {
	b.ensureInstalled()
	if !b.hasDefault {
		return oops.Code("METADATA_ERROR").With("plugin", b.name).New("module has no default configuration")
	}

	path := b.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return oops.With("plugin", b.name).With("path", path).Wrap(err)
	}
	if err := os.WriteFile(path, []byte(b.defaultConfig), 0o600); err != nil {
		return oops.With("plugin", b.name).With("path", path).Wrap(err)
	}
	return nil
}

// ensureInstalled panics on host interaction before OnLoad. Constructors
// must not touch the host.
func (b *Base) ensureInstalled() {
	if !b.installed {
		panic(fmt.Sprintf("plugin: API interaction before OnLoad is not allowed (%T not installed)", b))
	}
}

// DefaultConfigFileName is the config file name used when a descriptor
// does not override it.
const DefaultConfigFileName = "config.yml"
