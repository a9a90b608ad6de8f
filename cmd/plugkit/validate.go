// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/plugkit/plugkit/internal/loader"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <module-dir>...",
		Short: "Validate module descriptors",
		Long:  `Resolve and validate the plugin.yaml descriptor of each module directory.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed error
			for _, dir := range args {
				d, err := loader.ResolveDescriptor(dir)
				if err != nil {
					cmd.PrintErrf("%s: %v\n", dir, err)
					failed = err
					continue
				}
				cmd.Printf("%s: ok (name=%s version=%s entry=%s)\n", dir, d.Name, d.Version, d.Entry)
			}
			return failed
		},
	}
}
