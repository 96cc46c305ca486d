package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/analysis"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/render"
)

var (
	cmpGroups []string
	cmpMetric string
	cmpPillar string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a set of groups: share of total for counts, mean of means for rates",
	Example: `  metroclusters compare -g "Star Hubs" -g "AI Superstars" --pillar innovation
  metroclusters compare -g "Star Hubs" --metric "AI Patents"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		snap, err := openEngine()
		if err != nil {
			return err
		}
		var cs []analysis.Comparison
		if cmpMetric != "" {
			c, err := snap.engine.Compare(cmpGroups, cmpMetric)
			if err != nil {
				return err
			}
			cs = []analysis.Comparison{c}
		} else {
			cs, err = snap.engine.CompareTable(cmpGroups, cmpPillar)
			if err != nil {
				return err
			}
		}
		title := fmt.Sprintf("Comparison: %s", strings.Join(selectedGroups(cs, cmpGroups), ", "))
		var v any = cs
		if cmpMetric != "" {
			v = cs[0]
		}
		return emit(cmd.OutOrStdout(), format, v, render.Comparisons(title, cs))
	},
}

func selectedGroups(cs []analysis.Comparison, fallback []string) []string {
	if len(cs) > 0 {
		return cs[0].Groups
	}
	return fallback
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringArrayVarP(&cmpGroups, "group", "g", nil, "group to include (repeatable)")
	compareCmd.Flags().StringVar(&cmpMetric, "metric", "", "compare a single metric")
	compareCmd.Flags().StringVar(&cmpPillar, "pillar", "all", "metric pillar when --metric is not set")
}
