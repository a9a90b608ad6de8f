// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

// Package main implements the plugkit CLI host.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	// Compiled-in entry types register themselves with the catalog.
	_ "github.com/plugkit/plugkit/plugins/echo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
