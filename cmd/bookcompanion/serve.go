package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/config"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/telemetry"
	"github.com/matiasleandrokruk/bookcompanion/internal/server"
	"github.com/matiasleandrokruk/bookcompanion/internal/version"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().Int("port", 0, "listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	if os.Getenv("JWT_SECRET") == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.OtelEnabled,
		ServiceName: version.Name,
		Version:     version.Version,
		Exporter:    cfg.OtelExporter,
		Endpoint:    cfg.OtelEndpoint,
		SampleRatio: cfg.OtelSampleRatio,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	app, err := server.NewApp(cfg, log)
	if err != nil {
		return err
	}
	return server.NewServer(app, server.ConfigFrom(cfg)).Run(ctx)
}
