package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/metro"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/render"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List cluster groups with their metro counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		snap, err := openEngine()
		if err != nil {
			return err
		}
		eng := snap.engine
		if err := metro.CheckPartition(eng.Table(), eng.Catalog()); err != nil {
			return fmt.Errorf("group partition: %w", err)
		}
		sizes := eng.GroupSizes()
		if err := emit(cmd.OutOrStdout(), format, sizes, render.GroupSizes(sizes)); err != nil {
			return err
		}
		if format == render.FormatTable {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %d metros across %d groups\n", eng.Table().Len(), len(sizes))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}
