// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCommand_PrintsSchema(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"schema"})

	require.NoError(t, cmd.Execute())

	var schema map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
	assert.Contains(t, schema, "$schema")
	assert.Contains(t, schema, "properties")

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"name", "version", "entry"} {
		assert.Contains(t, props, field)
	}
}

func TestSchemaCommand_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugin.schema.json")

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"schema", "-o", path})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Contains(t, schema, "properties")
}
