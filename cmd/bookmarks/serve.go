package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/xaenox/bookmark-lens/internal/api"
	"github.com/xaenox/bookmark-lens/internal/bot"
	"github.com/xaenox/bookmark-lens/internal/metrics"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.storage()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			a.metrics = metrics.New()
			srv := api.NewServer(api.Options{
				Storage:         store,
				Importer:        a.importer(),
				Analyzers:       a.analyzers(),
				DefaultProvider: a.cfg.Analysis.Provider,
				MaxUploadBytes:  a.cfg.Server.MaxUploadBytes,
				Metrics:         a.metrics,
				Logger:          a.logger,
			})
			return srv.Start(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newBotCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Start the Telegram bot",
		Long: `Bot answers the configured owner only. A document sent to it replaces the
library; commands analyze and query it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Telegram.Token == "" {
				return errors.New("telegram.token is required")
			}
			if a.cfg.Telegram.OwnerID == 0 {
				return errors.New("telegram.owner_id is required")
			}

			store, err := a.storage()
			if err != nil {
				return err
			}

			b, err := bot.New(a.cfg.Telegram.Token, bot.Options{
				OwnerID:         a.cfg.Telegram.OwnerID,
				Library:         a.library(),
				DefaultProvider: a.cfg.Analysis.Provider,
				MaxFileBytes:    a.cfg.Telegram.MaxFileBytes,
				Storage:         store,
				Importer:        a.importer(),
				Analyzers:       a.analyzers(),
				Logger:          a.logger,
			})
			if err != nil {
				return err
			}
			return b.Start(cmd.Context())
		},
	}
}
