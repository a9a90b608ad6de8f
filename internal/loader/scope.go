// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package loader

import (
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/plugkit/plugkit/pkg/plugin"
)

// Scope is the loading scope shared by every candidate in one load batch.
//
// It holds the host API handle and version, a snapshot of the entry-type
// catalog taken when the scope is built, and a symbol table of values
// explicitly exported under "module.Symbol" references. Modules see the
// host API and each other's exported symbols through the scope; anything
// a module does not export stays invisible to other modules.
type Scope struct {
	api        any
	apiVersion *semver.Version
	factories  map[string]plugin.Factory

	mu      sync.RWMutex
	symbols map[string]any
}

// ScopeOption configures a Scope.
type ScopeOption func(*Scope)

// WithFactories overrides the entry-type table, replacing the catalog
// snapshot. Used by hosts and tests that assemble their own entry set.
func WithFactories(factories map[string]plugin.Factory) ScopeOption {
	return func(s *Scope) {
		s.factories = factories
	}
}

// NewScope builds a loading scope around the host API. The version is
// matched against descriptor api-version constraints; nil means no
// constraint can be satisfied, so callers normally pass one.
func NewScope(api any, apiVersion *semver.Version, opts ...ScopeOption) *Scope {
	s := &Scope{
		api:        api,
		apiVersion: apiVersion,
		factories:  plugin.Factories(),
		symbols:    make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// API returns the host API handle.
func (s *Scope) API() any {
	return s.api
}

// APIVersion returns the host API version.
func (s *Scope) APIVersion() *semver.Version {
	return s.apiVersion
}

// Export publishes a symbol under "module.Symbol" so other modules in the
// batch can resolve it. Re-exporting a reference replaces the value.
func (s *Scope) Export(module, symbol string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols[module+"."+symbol] = value
}

// Resolve looks up an exported symbol by its "module.Symbol" reference.
func (s *Scope) Resolve(ref string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.symbols[ref]
	return v, ok
}

// factory returns the entry-type factory registered under entry.
func (s *Scope) factory(entry string) (plugin.Factory, bool) {
	f, ok := s.factories[entry]
	return f, ok
}
