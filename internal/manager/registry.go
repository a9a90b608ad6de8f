// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package manager

import (
	"sort"
	"sync"

	"github.com/samber/oops"

	"github.com/plugkit/plugkit/pkg/plugin"
)

// Registry is the single source of truth for loaded plugins: a mapping
// from unique plugin name to live instance. Safe for concurrent reads;
// mutations happen only under the manager's operation lock.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]plugin.Plugin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]plugin.Plugin),
	}
}

// Put registers an instance under its unique name. A duplicate name is an
// error; the existing entry is untouched.
func (r *Registry) Put(name string, p plugin.Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.plugins[name]; dup {
		return oops.Code("INSTANTIATION_ERROR").With("plugin", name).New("plugin name already registered")
	}
	r.plugins[name] = p
	return nil
}

// Get returns the instance registered under name.
func (r *Registry) Get(name string) (plugin.Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	return p, ok
}

// Remove drops the entry for name. Unknown names are a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.plugins, name)
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// Names returns the registered plugin names. Sorted for deterministic
// output; callers must not rely on any particular unload order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instances returns a snapshot of the registered instances.
func (r *Registry) Instances() []plugin.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]plugin.Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	return out
}
