// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package plugin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugkit/plugkit/pkg/plugin"
)

func TestRegister_LookupFactory(t *testing.T) {
	plugin.Register("catalog-test-lookup", func() plugin.Plugin { return &testPlugin{} })

	f, ok := plugin.LookupFactory("catalog-test-lookup")
	require.True(t, ok)
	assert.NotNil(t, f())

	_, ok = plugin.LookupFactory("catalog-test-absent")
	assert.False(t, ok)
}

func TestRegister_DuplicatePanics(t *testing.T) {
	plugin.Register("catalog-test-dup", func() plugin.Plugin { return &testPlugin{} })

	assert.Panics(t, func() {
		plugin.Register("catalog-test-dup", func() plugin.Plugin { return &testPlugin{} })
	})
}

func TestRegister_EmptyEntryPanics(t *testing.T) {
	assert.Panics(t, func() {
		plugin.Register("", func() plugin.Plugin { return &testPlugin{} })
	})
}

func TestRegister_NilFactoryPanics(t *testing.T) {
	assert.Panics(t, func() {
		plugin.Register("catalog-test-nil", nil)
	})
}

func TestFactories_ReturnsSnapshot(t *testing.T) {
	plugin.Register("catalog-test-snapshot", func() plugin.Plugin { return &testPlugin{} })

	snapshot := plugin.Factories()
	require.Contains(t, snapshot, "catalog-test-snapshot")

	// Mutating the snapshot never touches the catalog.
	delete(snapshot, "catalog-test-snapshot")
	_, ok := plugin.LookupFactory("catalog-test-snapshot")
	assert.True(t, ok)
}

func TestEntries_Sorted(t *testing.T) {
	plugin.Register("catalog-test-zz", func() plugin.Plugin { return &testPlugin{} })
	plugin.Register("catalog-test-aa", func() plugin.Plugin { return &testPlugin{} })

	entries := plugin.Entries()
	assert.IsIncreasing(t, entries)
	assert.Contains(t, entries, "catalog-test-aa")
	assert.Contains(t, entries, "catalog-test-zz")
}
