// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a plugin instance. Entry types must be constructible
// with no arguments; anything the plugin needs from the host arrives later
// through installation and OnLoad.
type Factory func() Plugin

// The entry-type catalog. Plugin packages register their exported entry
// constructor at init time, sql.Register style; nothing else about a
// plugin package is visible to the host or to other plugins unless
// exported through a loading scope.
var (
	catalogMu sync.RWMutex
	catalog   = make(map[string]Factory)
)

// Register makes an entry type available under the given identifier. It
// panics if the identifier is empty, the factory is nil, or the identifier
// is already taken, since all of these are programmer errors at package
// init time.
func Register(entry string, factory Factory) {
	catalogMu.Lock()
	defer catalogMu.Unlock()

	if entry == "" {
		panic("plugin: Register entry identifier is empty")
	}
	if factory == nil {
		panic(fmt.Sprintf("plugin: Register factory is nil for entry %q", entry))
	}
	if _, dup := catalog[entry]; dup {
		panic(fmt.Sprintf("plugin: Register called twice for entry %q", entry))
	}
	catalog[entry] = factory
}

// LookupFactory returns the factory registered under entry.
func LookupFactory(entry string) (Factory, bool) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()

	f, ok := catalog[entry]
	return f, ok
}

// Entries returns the registered entry identifiers, sorted.
func Entries() []string {
	catalogMu.RLock()
	defer catalogMu.RUnlock()

	entries := make([]string, 0, len(catalog))
	for entry := range catalog {
		entries = append(entries, entry)
	}
	sort.Strings(entries)
	return entries
}

// Factories returns a snapshot of the catalog. The loader captures one
// per load batch so late registrations cannot alter a batch in flight.
func Factories() map[string]Factory {
	catalogMu.RLock()
	defer catalogMu.RUnlock()

	snapshot := make(map[string]Factory, len(catalog))
	for entry, f := range catalog {
		snapshot[entry] = f
	}
	return snapshot
}
