package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/analysis"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/catalog"
	cfgpkg "github.com/shriya-methkupally/metro-2025-clusters/internal/config"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/loader"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/observability"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/render"
)

var (
	// Global flags (override config if set)
	cfgFile       string
	flagMetrics   string
	flagClusters  string
	flagCatalog   string
	flagSheet     string
	flagFormat    string
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

var rootCmd = &cobra.Command{
	Use:   "metroclusters",
	Short: "Explore AI readiness of U.S. metros by cluster",
	Long: `metroclusters loads the metro AI metrics table and the cluster assignment table,
aggregates every metric per cluster group and answers statistics, comparison and
single-metro queries on the terminal or over a read-only HTTP API.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.metroclusters/config.yaml)")
	pf.StringVar(&flagMetrics, "metrics", "", "metro metrics table (.csv, .tsv or .xlsx)")
	pf.StringVar(&flagClusters, "clusters", "", "cluster assignment table (.csv, .tsv or .xlsx)")
	pf.StringVar(&flagCatalog, "catalog", "", "YAML metric catalog (default: built-in pillars)")
	pf.StringVar(&flagSheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
	pf.StringVarP(&flagFormat, "format", "f", "", "output format: table|json|csv|md")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")
	pf.StringVar(&flagLogFormat, "log-format", "", "log format: text|json")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to flags and defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{TopN: 5, Format: render.FormatTable, HTTPAddr: ":8080", ShutdownTimeoutSec: 10}
	}
	cfg = c
	applyFlags(rootCmd, cfg)
	logger = observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
}

// applyFlags copies explicitly set persistent flags over the loaded config.
func applyFlags(cmd *cobra.Command, c *cfgpkg.Global) {
	f := cmd.PersistentFlags()
	if f.Changed("metrics") {
		c.MetricsPath = flagMetrics
	}
	if f.Changed("clusters") {
		c.ClustersPath = flagClusters
	}
	if f.Changed("catalog") {
		c.CatalogPath = flagCatalog
	}
	if f.Changed("sheet") {
		c.Sheet = flagSheet
	}
	if f.Changed("format") {
		c.Format = flagFormat
	}
	if f.Changed("log-level") {
		c.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") {
		c.LogFormat = flagLogFormat
	}
}

// snapshot is a loaded engine plus what the load reported.
type snapshot struct {
	engine  *analysis.Engine
	report  *loader.Report
	elapsed time.Duration
}

// openEngine loads the catalog and both tables named by the effective config
// and aggregates them.
func openEngine() (*snapshot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	start := time.Now()
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	opt := loader.Options{
		MetricsPath:       cfg.MetricsPath,
		ClustersPath:      cfg.ClustersPath,
		Sheet:             cfg.Sheet,
		KeyColumn:         cfg.KeyColumn,
		TitleColumn:       cfg.TitleColumn,
		GroupColumn:       cfg.GroupColumn,
		CombinationColumn: cfg.CombinationColumn,
	}
	if opt.MetricsPath == "" || opt.ClustersPath == "" {
		return nil, fmt.Errorf("set --metrics and --clusters (or metrics_path and clusters_path in config)")
	}
	table, rep, err := loader.Load(opt, cat)
	if err != nil {
		return nil, err
	}
	for _, w := range rep.Warnings {
		logger.Warn(w)
	}
	eng := analysis.New(table, cat)
	logger.Debug("snapshot loaded",
		"metros", table.Len(),
		"summaries", len(eng.Summaries()),
		"coerced", rep.Coerced,
		"unmatched", rep.Unmatched,
	)
	return &snapshot{engine: eng, report: rep, elapsed: time.Since(start)}, nil
}

func outputFormat() (string, error) {
	if cfg == nil {
		return render.FormatTable, nil
	}
	return render.ParseFormat(cfg.Format)
}

func topN(cmd *cobra.Command, flagVal int) int {
	if cmd.Flags().Changed("top") || cfg == nil {
		return flagVal
	}
	return cfg.TopN
}

// emit writes either the JSON form of v or the grid in a text format.
func emit(w io.Writer, format string, v any, g render.Grid) error {
	if format == render.FormatJSON {
		return render.WriteJSON(w, v)
	}
	return render.Write(w, g, format)
}
