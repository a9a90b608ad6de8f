// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugkit/plugkit/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("METADATA_ERROR").
		With("plugin", "echo").
		Errorf("descriptor rejected")

	errutil.LogError(logger, "load failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Equal(t, "load failed", logEntry["msg"])
	assert.Equal(t, "METADATA_ERROR", logEntry["code"])

	ctx, ok := logEntry["context"].(map[string]any)
	require.True(t, ok, "expected context attr, got %T", logEntry["context"])
	assert.Equal(t, "echo", ctx["plugin"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := errors.New("standard error")

	errutil.LogError(logger, "load failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Contains(t, logEntry["error"], "standard error")
	assert.NotContains(t, logEntry, "code")
}
