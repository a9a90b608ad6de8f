// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package plugin_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugkit/plugkit/internal/seal"
	"github.com/plugkit/plugkit/pkg/errutil"
	"github.com/plugkit/plugkit/pkg/plugin"
)

type testPlugin struct {
	plugin.Base
}

func (*testPlugin) OnLoad() error   { return nil }
func (*testPlugin) OnUnload() error { return nil }

func install(t *testing.T, p plugin.Plugin, name, dir string, opts ...plugin.InstallOption) {
	t.Helper()
	ic := plugin.NewInstallContext(seal.New(), name, dir, opts...)
	require.NoError(t, p.Install(ic))
}

func TestBase_InstallSetsIdentityExactlyOnce(t *testing.T) {
	p := &testPlugin{}
	install(t, p, "example", "/srv/modules/example")

	assert.Equal(t, "example", p.Name())
	assert.Equal(t, "/srv/modules/example", p.Dir())

	// The name is set exactly once; a second install is rejected.
	err := p.Install(plugin.NewInstallContext(seal.New(), "other", "/elsewhere"))
	errutil.AssertErrorCode(t, err, "INSTANTIATION_ERROR")
	assert.Equal(t, "example", p.Name())
}

func TestBase_RejectsZeroValueInstallContext(t *testing.T) {
	p := &testPlugin{}
	err := p.Install(plugin.InstallContext{})
	errutil.AssertErrorCode(t, err, "INSTANTIATION_ERROR")
	assert.Empty(t, p.Name())
}

func TestBase_APIInteractionBeforeInstallPanics(t *testing.T) {
	p := &testPlugin{}
	assert.Panics(t, func() { p.Dir() })
	assert.Panics(t, func() { p.API() })

	// Name is the exception: the manager needs it before install.
	assert.Empty(t, p.Name())
}

func TestBase_GetPluginByNameUsesInstalledHandle(t *testing.T) {
	peer := &testPlugin{}
	p := &testPlugin{}
	install(t, p, "example", t.TempDir(), plugin.WithLookup(
		func(name string) (plugin.Plugin, bool, error) {
			if name == "peer" {
				return peer, true, nil
			}
			return nil, false, nil
		}))

	got, ok, err := p.GetPluginByName("peer")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, plugin.Plugin(peer), got)

	_, ok, err = p.GetPluginByName("absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBase_GetPluginByNameWithoutHandleFails(t *testing.T) {
	p := &testPlugin{}
	install(t, p, "example", t.TempDir())

	_, _, err := p.GetPluginByName("peer")
	errutil.AssertErrorCode(t, err, "CAPABILITY_ERROR")
}

func TestBase_DefaultConfigPayload(t *testing.T) {
	p := &testPlugin{}
	install(t, p, "example", t.TempDir(), plugin.WithDefaultConfig("greeting: hello\n"))

	payload, ok := p.DefaultConfig()
	assert.True(t, ok)
	assert.Equal(t, "greeting: hello\n", payload)
}

func TestBase_NoDefaultConfigPayload(t *testing.T) {
	p := &testPlugin{}
	install(t, p, "example", t.TempDir())

	_, ok := p.DefaultConfig()
	assert.False(t, ok)
}

func TestBase_ConfigPathUsesConfiguredFileName(t *testing.T) {
	dir := t.TempDir()

	p := &testPlugin{}
	install(t, p, "example", dir, plugin.WithConfigFileName("settings.yml"))

	assert.Equal(t, filepath.Join(dir, "example", "settings.yml"), p.ConfigPath())
}

func TestBase_ConfigFileNameDefaults(t *testing.T) {
	p := &testPlugin{}
	install(t, p, "example", t.TempDir())

	assert.Equal(t, "config.yml", p.ConfigFileName())
}

func TestBase_WriteDefaultConfigMaterializes(t *testing.T) {
	dir := t.TempDir()

	p := &testPlugin{}
	install(t, p, "example", dir, plugin.WithDefaultConfig("greeting: hello\n"))

	require.NoError(t, p.WriteDefaultConfig())

	data, err := os.ReadFile(filepath.Join(dir, "example", "config.yml"))
	require.NoError(t, err)
	assert.Equal(t, "greeting: hello\n", string(data))
}

func TestBase_WriteDefaultConfigNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "example"), 0o750))
	existing := filepath.Join(dir, "example", "config.yml")
	require.NoError(t, os.WriteFile(existing, []byte("greeting: custom\n"), 0o600))

	p := &testPlugin{}
	install(t, p, "example", dir, plugin.WithDefaultConfig("greeting: hello\n"))

	require.NoError(t, p.WriteDefaultConfig())

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "greeting: custom\n", string(data))
}

func TestBase_WriteDefaultConfigWithoutPayloadFails(t *testing.T) {
	p := &testPlugin{}
	install(t, p, "example", t.TempDir())

	err := p.WriteDefaultConfig()
	errutil.AssertErrorCode(t, err, "METADATA_ERROR")
}
