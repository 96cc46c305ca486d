package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/render"
)

var metroCmd = &cobra.Command{
	Use:   "metro <title-or-code>",
	Short: "Show every tracked metric for one metro",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		snap, err := openEngine()
		if err != nil {
			return err
		}
		p, err := snap.engine.Lookup(strings.Join(args, " "))
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), format, p, render.Profile(p))
	},
}

func init() {
	rootCmd.AddCommand(metroCmd)
}
