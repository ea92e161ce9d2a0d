package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/NelaStaffing/hardware-store-bot/agent"
	"github.com/NelaStaffing/hardware-store-bot/reply"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Run one chat turn and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if cfg.TurnTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.TurnTimeout)
			defer cancel()
		}

		turn, err := a.agent.Respond(ctx, nil, strings.Join(args, " "))
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			fmt.Fprintln(cmd.OutOrStdout(), agent.UserMessage(err))
			return err
		}

		printExtraction(cmd, reply.Extract(turn.Reply.Content))
		return nil
	},
}

func printExtraction(cmd *cobra.Command, ext reply.Extraction) {
	out := cmd.OutOrStdout()
	if ext.Intro != "" {
		fmt.Fprintln(out, ext.Intro)
	}
	if ext.HasBlock() {
		for i, p := range ext.Block.Products {
			fmt.Fprintf(out, "%2d. %-40s %-12s $%-8.2f aisle %s\n", i+1, p.Name, p.SKU, float64(p.Price), p.Aisle)
		}
	}
	if ext.Outro != "" {
		fmt.Fprintln(out, ext.Outro)
	}
}
