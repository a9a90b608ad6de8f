// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package capability_test

import (
	"testing"

	"github.com/plugkit/plugkit/internal/capability"
)

func TestEnforcer_Check(t *testing.T) {
	tests := []struct {
		name       string
		grants     []string
		capability string
		want       bool
	}{
		{
			name:       "exact match",
			grants:     []string{"plugins.lookup"},
			capability: "plugins.lookup",
			want:       true,
		},
		{
			name:       "single segment wildcard matches child",
			grants:     []string{"plugins.*"},
			capability: "plugins.lookup",
			want:       true,
		},
		{
			name:       "single segment wildcard does not cross segments",
			grants:     []string{"plugins.*"},
			capability: "plugins.admin.grant",
			want:       false,
		},
		{
			name:       "double wildcard crosses segments",
			grants:     []string{"plugins.**"},
			capability: "plugins.admin.grant",
			want:       true,
		},
		{
			name:       "bare double wildcard matches anything",
			grants:     []string{"**"},
			capability: "plugins.lookup",
			want:       true,
		},
		{
			name:       "no match returns false",
			grants:     []string{"events.fire"},
			capability: "plugins.lookup",
			want:       false,
		},
		{
			name:       "empty grants returns false",
			grants:     []string{},
			capability: "plugins.lookup",
			want:       false,
		},
		{
			name:       "prefix without wildcard not allowed",
			grants:     []string{"plugins"},
			capability: "plugins.lookup",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := capability.NewEnforcer()
			if err := e.SetGrants("test-plugin", tt.grants); err != nil {
				t.Fatalf("SetGrants() error = %v", err)
			}

			got := e.Check("test-plugin", tt.capability)
			if got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnforcer_Check_UnknownPlugin(t *testing.T) {
	e := capability.NewEnforcer()
	if e.Check("unknown", "plugins.lookup") {
		t.Error("Check() should return false for unknown plugin")
	}
}

func TestEnforcer_Check_EmptyCapability(t *testing.T) {
	e := capability.NewEnforcer()
	if err := e.SetGrants("test-plugin", []string{"**"}); err != nil {
		t.Fatalf("SetGrants() error = %v", err)
	}
	if e.Check("test-plugin", "") {
		t.Error("Check() should deny an empty capability")
	}
}

func TestEnforcer_SetGrants_Validation(t *testing.T) {
	e := capability.NewEnforcer()

	if err := e.SetGrants("", []string{"plugins.lookup"}); err == nil {
		t.Error("SetGrants() should reject an empty plugin name")
	}
	if err := e.SetGrants("test-plugin", []string{""}); err == nil {
		t.Error("SetGrants() should reject an empty pattern")
	}
	if err := e.SetGrants("test-plugin", []string{"plugins.["}); err == nil {
		t.Error("SetGrants() should reject a malformed pattern")
	}
	// Failed calls leave no partial state behind.
	if e.IsRegistered("test-plugin") {
		t.Error("IsRegistered() should be false after failed SetGrants()")
	}
}

func TestEnforcer_SetGrants_ReplacesPrevious(t *testing.T) {
	e := capability.NewEnforcer()
	if err := e.SetGrants("test-plugin", []string{"plugins.lookup"}); err != nil {
		t.Fatalf("SetGrants() error = %v", err)
	}
	if err := e.SetGrants("test-plugin", []string{"events.fire"}); err != nil {
		t.Fatalf("SetGrants() error = %v", err)
	}

	if e.Check("test-plugin", "plugins.lookup") {
		t.Error("Check() should not match a replaced grant")
	}
	if !e.Check("test-plugin", "events.fire") {
		t.Error("Check() should match the current grant")
	}
}

func TestEnforcer_RemoveGrants(t *testing.T) {
	e := capability.NewEnforcer()
	if err := e.SetGrants("test-plugin", []string{"plugins.lookup"}); err != nil {
		t.Fatalf("SetGrants() error = %v", err)
	}

	e.RemoveGrants("test-plugin")

	if e.IsRegistered("test-plugin") {
		t.Error("IsRegistered() should be false after RemoveGrants()")
	}
	if e.Check("test-plugin", "plugins.lookup") {
		t.Error("Check() should deny after RemoveGrants()")
	}

	// Unknown plugins are a no-op.
	e.RemoveGrants("never-loaded")
}

func TestEnforcer_Grants(t *testing.T) {
	e := capability.NewEnforcer()
	if e.Grants("unknown") != nil {
		t.Error("Grants() should be nil for an unknown plugin")
	}

	want := []string{"plugins.lookup", "events.*"}
	if err := e.SetGrants("test-plugin", want); err != nil {
		t.Fatalf("SetGrants() error = %v", err)
	}

	got := e.Grants("test-plugin")
	if len(got) != len(want) {
		t.Fatalf("Grants() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Grants()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
