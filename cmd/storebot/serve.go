package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/NelaStaffing/hardware-store-bot/monitor"
	"github.com/NelaStaffing/hardware-store-bot/server"
	"github.com/NelaStaffing/hardware-store-bot/server/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		preview, err := store.NewPreviewStore(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}

		srv, err := server.New(server.Config{
			Agent:           a.agent,
			Resolver:        a.catalog,
			Registry:        a.registry,
			Sessions:        a.stores.Sessions,
			Traces:          a.stores.Traces,
			Preview:         preview,
			Totals:          monitor.NewTotals(),
			Model:           cfg.OpenAIModel,
			RateLimitPerMin: cfg.RateLimitPerMin,
			RateLimitBurst:  cfg.RateLimitBurst,
			TurnTimeout:     cfg.TurnTimeout,
			TrustProxy:      cfg.TrustProxy,
		})
		if err != nil {
			return err
		}
		defer srv.Close()

		addr := ":" + cfg.Port
		log.Info().Str("component", "server").Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(ctx, addr, 15*time.Second); err != nil {
			return err
		}
		log.Info().Str("component", "server").Msg("shut down")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on.\nOverrides the PORT environment variable if set.")
}
