package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/render"
)

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show global totals of count-like metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		snap, err := openEngine()
		if err != nil {
			return err
		}
		totals := snap.engine.Totals()
		return emit(cmd.OutOrStdout(), format, totals, render.Totals(snap.engine.Catalog().All(), totals))
	},
}

func init() {
	rootCmd.AddCommand(totalsCmd)
}
