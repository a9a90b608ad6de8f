// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// NewRootCmd creates the root command for the plugkit CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugkit",
		Short: "Plugkit - plugin host runtime",
		Long: `Plugkit hosts third-party extension modules: it loads them from a
plugins directory, drives their lifecycle, and routes typed events
between host and plugins.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
