package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roomcast/roomcast/internal/app"
	"github.com/roomcast/roomcast/internal/config"
	"github.com/roomcast/roomcast/internal/log"
)

func newServeCmd() *cobra.Command {
	var overrides config.Config

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootLevel := logLevel
			if bootLevel == "" {
				bootLevel = "info"
			}
			bootLogger := log.New(bootLevel)

			cfg, path, err := config.Load(bootLogger, cfgPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(overrides)
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", path).Msg("configuration loaded")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.New(cfg, logger).Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&overrides.ListenAddr, "listen", "", "protocol listen address")
	cmd.Flags().StringVar(&overrides.HTTPAddr, "http", "", "HTTP listen address")
	cmd.Flags().StringVar(&overrides.RoomName, "room", "", "room name")
	cmd.Flags().IntVar(&overrides.HistoryLimit, "history", 0, "history buffer capacity")
	return cmd
}
