package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/NelaStaffing/hardware-store-bot/reply"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Split an assistant reply read from stdin into intro, product list and outro",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read reply: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reply.Extract(string(data)))
	},
}
