package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/analysis"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/render"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/utils"
)

var (
	statsGroup  string
	statsPillar string
	statsTop    int
	statsOutput string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summary statistics, top/bottom metros and combinations for one group",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		snap, err := openEngine()
		if err != nil {
			return err
		}
		rep, err := snap.engine.GroupReport(statsGroup, statsPillar, topN(cmd, statsTop))
		if err != nil {
			return err
		}

		if statsOutput != "" {
			if err := writeReport(statsOutput, rep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s report to %s\n", rep.Group, statsOutput)
			return nil
		}
		return printReport(cmd.OutOrStdout(), format, rep)
	},
}

// writeReport saves rep as JSON when path ends in .json, Markdown otherwise.
func writeReport(path string, rep *analysis.Report) error {
	var b []byte
	if strings.EqualFold(filepath.Ext(path), ".json") {
		j, err := utils.PrettyJSON(rep)
		if err != nil {
			return err
		}
		b = j
	} else {
		b = []byte(rep.Markdown())
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func printReport(w io.Writer, format string, rep *analysis.Report) error {
	switch format {
	case render.FormatJSON:
		return render.WriteJSON(w, rep)
	case render.FormatMarkdown:
		_, err := fmt.Fprint(w, rep.Markdown())
		return err
	}
	fmt.Fprintf(w, "%s: %d metros (%s metrics)\n", rep.Group, rep.Metros, rep.Pillar)
	grids := []render.Grid{
		render.Summaries("Summary statistics", rep.Summaries),
		render.Rankings("Top and bottom metros", rep.Rankings),
		render.Combinations("Combinations", rep.Combinations),
	}
	for _, g := range grids {
		if err := render.Write(w, g, format); err != nil {
			return err
		}
	}
	for _, n := range rep.Notes {
		fmt.Fprintf(w, "⚠ %s\n", n)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsGroup, "group", "g", "", "cluster group name (e.g. \"Star Hubs\")")
	statsCmd.Flags().StringVar(&statsPillar, "pillar", "all", "metric pillar: talent|innovation|adoption|all")
	statsCmd.Flags().IntVarP(&statsTop, "top", "n", 5, "length of the top/bottom lists")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "", "write the report to a file (.md or .json)")
	_ = statsCmd.MarkFlagRequired("group")
}
