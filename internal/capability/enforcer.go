// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

// Package capability provides runtime capability checks for plugins.
//
// Grants come from descriptor capability patterns, matched with
// gobwas/glob using '.' as the segment separator:
//   - '*' matches a single segment (does not cross '.')
//   - '**' matches zero or more segments (crosses '.')
//
// Examples:
//   - "plugins.lookup" matches exactly that capability
//   - "plugins.*" matches "plugins.lookup" but not "plugins.admin.grant"
//   - "**" matches any capability
package capability

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gobwas/glob"
)

// Lookup is the capability gating cross-plugin by-name lookup.
const Lookup = "plugins.lookup"

// compiledGrant holds a pattern and its compiled glob.
type compiledGrant struct {
	pattern string
	glob    glob.Glob
}

// Enforcer checks plugin capabilities at runtime. Unknown plugins and
// unmatched capabilities are denied; there is no error channel for a
// denial. Safe for concurrent use.
type Enforcer struct {
	grants map[string][]compiledGrant // plugin name -> compiled grants
	mu     sync.RWMutex
}

// NewEnforcer creates a capability enforcer.
func NewEnforcer() *Enforcer {
	return &Enforcer{
		grants: make(map[string][]compiledGrant),
	}
}

// SetGrants registers a plugin's capability patterns, replacing any
// previous grants. All patterns are compiled before state changes, so an
// invalid pattern leaves the enforcer untouched.
func (e *Enforcer) SetGrants(plugin string, capabilities []string) error {
	if plugin == "" {
		return errors.New("plugin name cannot be empty")
	}

	compiled := make([]compiledGrant, len(capabilities))
	for i, pattern := range capabilities {
		if pattern == "" {
			return fmt.Errorf("capability %d: empty capability pattern", i)
		}
		// '.' as separator so '*' does not cross segment boundaries
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return fmt.Errorf("capability %d (%q): %w", i, pattern, err)
		}
		compiled[i] = compiledGrant{pattern: pattern, glob: g}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.grants[plugin] = compiled
	return nil
}

// RemoveGrants unregisters a plugin. Safe to call for unknown plugins.
func (e *Enforcer) RemoveGrants(plugin string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.grants, plugin)
}

// IsRegistered reports whether the plugin has grants registered, which
// distinguishes "never loaded" from "loaded without capabilities".
func (e *Enforcer) IsRegistered(plugin string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.grants[plugin]
	return ok
}

// Grants returns a copy of the patterns granted to a plugin, nil if the
// plugin is not registered.
func (e *Enforcer) Grants(plugin string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	grants, ok := e.grants[plugin]
	if !ok {
		return nil
	}
	patterns := make([]string, len(grants))
	for i, g := range grants {
		patterns[i] = g.pattern
	}
	return patterns
}

// Check reports whether the plugin holds the requested capability.
// Empty inputs and unknown plugins are denied.
func (e *Enforcer) Check(plugin, capability string) bool {
	if capability == "" {
		return false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, grant := range e.grants[plugin] {
		if grant.glob.Match(capability) {
			return true
		}
	}
	return false
}
