// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/plugkit/plugkit/internal/config"
	"github.com/plugkit/plugkit/internal/loader"
	"github.com/plugkit/plugkit/internal/logging"
	"github.com/plugkit/plugkit/internal/manager"
	"github.com/plugkit/plugkit/internal/observability"
)

// HostAPI is the handle exposed to plugins. Plugins receive it through
// their API accessor after OnLoad.
type HostAPI struct {
	Version string
}

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load plugins and run the host until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runHost(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "config file path")
	cmd.Flags().String("plugins-dir", config.DefaultPluginsDir, "directory scanned for plugin modules")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("api-version", config.DefaultAPIVersion, "host API version")

	return cmd
}

func runHost(ctx context.Context, cfg config.Config) error {
	logging.SetDefault("plugkit", version, cfg.LogFormat)
	logger := slog.Default()

	api := &HostAPI{Version: cfg.APIVersion}

	opts := []manager.Option{
		manager.WithAPIVersion(cfg.APIVersion),
		manager.WithLogger(logger),
		manager.WithExport("host", "api", api),
	}

	var mgr *manager.Manager

	if cfg.MetricsAddr != "" {
		obs := observability.NewServer(cfg.MetricsAddr, func() bool {
			return mgr != nil && mgr.Ready()
		})
		opts = append(opts, manager.WithMetrics(obs.Metrics()))

		errCh, err := obs.Start()
		if err != nil {
			return err
		}
		go func() {
			if serveErr := <-errCh; serveErr != nil {
				logger.Error("observability server failed", "error", serveErr)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obs.Stop(shutdownCtx); err != nil {
				logger.Error("failed to stop observability server", "error", err)
			}
		}()
	}

	mgr = manager.New(api, logging.NewSlogSink(logger), opts...)

	dirs, err := loader.DiscoverDirs(cfg.PluginsDir)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		logger.Warn("no plugin modules found", "dir", cfg.PluginsDir)
	}

	if err := mgr.LoadPlugins(dirs); err != nil {
		return err
	}
	logger.Info("host ready", "plugins", mgr.Plugins())

	<-ctx.Done()

	logger.Info("shutting down")
	mgr.HandleShutdown()
	return nil
}
