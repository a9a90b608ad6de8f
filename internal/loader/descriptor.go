// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

// Package loader resolves module descriptors and instantiates entry types
// inside a shared loading scope.
package loader

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// DescriptorFileName is the metadata file resolved for every candidate
// module directory.
const DescriptorFileName = "plugin.yaml"

// Descriptor is the resolved metadata for one module: its unique name and
// the entry type the manager instantiates, plus declared capabilities and
// symbol requirements. Resolved once per candidate at load time and
// immutable thereafter.
type Descriptor struct {
	Name       string `yaml:"name" json:"name" jsonschema:"required"`
	Version    string `yaml:"version" json:"version" jsonschema:"required"`
	Entry      string `yaml:"entry" json:"entry" jsonschema:"required"`
	APIVersion string `yaml:"api-version,omitempty" json:"api-version,omitempty"`

	// Capabilities are glob patterns granted to the plugin, matched with
	// '.' as the segment separator (e.g. "plugins.lookup", "plugins.*").
	Capabilities []string `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`

	// Requires lists scope symbol references ("module.Symbol") the
	// packaged code mentions. The preflight link check resolves each one
	// eagerly; unresolved references are logged, not fatal.
	Requires []string `yaml:"requires,omitempty" json:"requires,omitempty"`

	// ConfigFile overrides the default config file name.
	ConfigFile string `yaml:"config-file,omitempty" json:"config-file,omitempty"`
}

// maxNameLength is the maximum allowed length for module names.
const maxNameLength = 64

// namePattern validates module names: must start with a lowercase letter,
// followed by lowercase letters, digits, or hyphens. Cannot end with a
// hyphen. Single character names are allowed.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ResolveDescriptor reads and validates the descriptor for the module at
// dir. Failures carry the METADATA_ERROR code.
func ResolveDescriptor(dir string) (*Descriptor, error) {
	path := filepath.Join(dir, DescriptorFileName)
	data, err := os.ReadFile(path) //nolint:gosec // path is a host-supplied module location
	if err != nil {
		return nil, oops.Code("METADATA_ERROR").With("path", path).Wrap(err)
	}
	return ParseDescriptor(data)
}

// ParseDescriptor parses and validates descriptor bytes.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	if len(data) == 0 {
		return nil, oops.Code("METADATA_ERROR").New("descriptor data is empty")
	}

	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, oops.Code("METADATA_ERROR").Hint("invalid YAML").Wrap(err)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	return &d, nil
}

// Validate checks descriptor constraints.
func (d *Descriptor) Validate() error {
	if d.Name == "" || !namePattern.MatchString(d.Name) {
		return oops.Code("METADATA_ERROR").With("name", d.Name).
			New("name must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen")
	}
	if len(d.Name) > maxNameLength {
		return oops.Code("METADATA_ERROR").With("name", d.Name).
			Errorf("name must be %d characters or less, got %d", maxNameLength, len(d.Name))
	}

	if d.Version == "" {
		return oops.Code("METADATA_ERROR").With("name", d.Name).New("version is required")
	}
	if _, err := semver.NewVersion(d.Version); err != nil {
		return oops.Code("METADATA_ERROR").With("name", d.Name).With("version", d.Version).
			Hint("version must be valid semver").Wrap(err)
	}

	if d.Entry == "" {
		return oops.Code("METADATA_ERROR").With("name", d.Name).New("entry is required")
	}

	if d.APIVersion != "" {
		if _, err := semver.NewConstraint(d.APIVersion); err != nil {
			return oops.Code("METADATA_ERROR").With("name", d.Name).With("api-version", d.APIVersion).
				Hint("api-version must be a valid semver constraint").Wrap(err)
		}
	}

	return nil
}

// APIConstraint returns the parsed api-version constraint, or nil if the
// descriptor declares none. Validate must have accepted the descriptor.
func (d *Descriptor) APIConstraint() *semver.Constraints {
	if d.APIVersion == "" {
		return nil
	}
	c, err := semver.NewConstraint(d.APIVersion)
	if err != nil {
		return nil
	}
	return c
}
