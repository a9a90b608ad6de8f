// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/plugkit/plugkit/internal/loader"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Generate the JSON Schema for plugin.yaml descriptors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := loader.GenerateSchema()
			if err != nil {
				return err
			}
			if output == "" {
				cmd.Println(string(data))
				return nil
			}
			return os.WriteFile(output, append(data, '\n'), 0o600)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write schema to file instead of stdout")

	return cmd
}
