package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/adrianliechti/t101/config"
	"github.com/adrianliechti/t101/pkg/otel"
	"github.com/adrianliechti/t101/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		shutdown, err := otel.Setup(ctx, "t101", version)

		if err != nil {
			slog.Warn("failed to set up telemetry", "error", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := shutdown(ctx); err != nil {
					slog.Warn("failed to flush telemetry", "error", err)
				}
			}()
		}

		cfg, err := config.Parse(configPath)

		if err != nil {
			return err
		}

		setupLogging(cfg.LogLevel)

		if cfg.ErrorLog != nil {
			defer cfg.ErrorLog.Close()
		}

		s, err := server.New(cfg)

		if err != nil {
			return err
		}

		return s.ListenAndServe(ctx)
	},
}
