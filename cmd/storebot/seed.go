package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/NelaStaffing/hardware-store-bot/server/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Import products from a .yaml, .xlsx or .csv file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := store.LoadProducts(args[0])
		if err != nil {
			return err
		}

		stores, err := store.NewStores(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("initialize stores: %w", err)
		}
		defer stores.Close()

		n, err := stores.Catalog.Upsert(cmd.Context(), products)
		if err != nil {
			return err
		}
		total, err := stores.Catalog.Count(cmd.Context())
		if err != nil {
			return err
		}

		log.Info().Str("component", "seed").Int("imported", n).Int("total", total).Msg("catalog seeded")
		return nil
	},
}
