// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/plugkit/plugkit/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("NOT_LOADED").Errorf("test error")
	// Should not fail
	errutil.AssertErrorCode(t, err, "NOT_LOADED")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("plugin", "echo").Errorf("test error")
	// Should not fail
	errutil.AssertErrorContext(t, err, "plugin", "echo")
}
