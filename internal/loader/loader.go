// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/oops"

	"github.com/plugkit/plugkit/pkg/plugin"
)

// PreflightLinkCheck eagerly resolves every symbol reference the
// descriptor declares. It returns one error per unresolved reference;
// callers log them and carry on, since a module may reference optional
// code paths that are never executed.
func PreflightLinkCheck(d *Descriptor, scope *Scope) []error {
	var unresolved []error
	for _, ref := range d.Requires {
		if _, ok := scope.Resolve(ref); !ok {
			unresolved = append(unresolved,
				oops.Code("METADATA_ERROR").With("plugin", d.Name).With("symbol", ref).
					New("unresolved symbol reference"))
		}
	}
	return unresolved
}

// Instantiate constructs the descriptor's entry type inside the scope.
//
// The entry type must be registered in the scope's factory table,
// constructible with no arguments, and satisfy the plugin contract. A
// factory that panics (for example a constructor touching the host API
// before OnLoad) or returns nil is an INSTANTIATION_ERROR; an entry with
// no registered factory and an unsatisfied api-version constraint are
// METADATA_ERRORs.
func Instantiate(scope *Scope, d *Descriptor) (p plugin.Plugin, err error) {
	factory, ok := scope.factory(d.Entry)
	if !ok {
		return nil, oops.Code("METADATA_ERROR").With("plugin", d.Name).With("entry", d.Entry).
			New("entry type is not registered")
	}

	if c := d.APIConstraint(); c != nil {
		if v := scope.APIVersion(); v == nil || !c.Check(v) {
			return nil, oops.Code("METADATA_ERROR").With("plugin", d.Name).With("constraint", d.APIVersion).
				New("host API version does not satisfy descriptor constraint")
		}
	}

	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = oops.Code("INSTANTIATION_ERROR").With("plugin", d.Name).With("entry", d.Entry).
				Errorf("entry type constructor panicked: %v", r)
		}
	}()

	p = factory()
	if p == nil {
		return nil, oops.Code("INSTANTIATION_ERROR").With("plugin", d.Name).With("entry", d.Entry).
			New("entry type constructor returned nil")
	}
	return p, nil
}

// DiscoverDirs finds candidate module directories under root: every
// subdirectory containing a descriptor file. Results are sorted so load
// order is deterministic. A missing root is not an error.
func DiscoverDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, oops.With("dir", root).Hint("failed to read modules directory").Wrap(err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, DescriptorFileName)); err != nil {
			continue
		}
		dirs = append(dirs, dir)
	}

	sort.Strings(dirs)
	return dirs, nil
}

// ConfigSource is the default-configuration collaborator: given a module
// directory and its configured file name, it returns the embedded default
// payload as text if present. The core only shuttles the payload into the
// instantiated plugin; it never parses it.
type ConfigSource interface {
	DefaultConfig(dir, fileName string) (payload string, ok bool, err error)
}

// DirConfigSource reads the default payload from the module directory
// itself. It is the collaborator used when none is supplied.
type DirConfigSource struct{}

// DefaultConfig reads {dir}/{fileName} if it exists.
func (DirConfigSource) DefaultConfig(dir, fileName string) (string, bool, error) {
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path) //nolint:gosec // path is rooted in a host-supplied module dir
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read default config %s: %w", path, err)
	}
	return string(data), true, nil
}
