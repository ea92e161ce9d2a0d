package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/NelaStaffing/hardware-store-bot/config"
)

var (
	cfg *config.Config

	RootCmd = &cobra.Command{
		Use:   "storebot",
		Short: "Hardware-store chat assistant",
		Long: `storebot answers shopper questions about the store catalog.

It drives an OpenAI-compatible model with inventory search, product
detail and manual lookup tools, and serves the storefront chat API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
			}
			initLogging(cfg.ZerologLevel())
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
)

func init() {
	RootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error).\nOverrides the LOG_LEVEL environment variable if set.")

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(askCmd)
	RootCmd.AddCommand(seedCmd)
	RootCmd.AddCommand(extractCmd)
}

func initLogging(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
