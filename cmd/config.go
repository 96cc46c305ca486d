package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/shriya-methkupally/metro-2025-clusters/internal/config"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set metroclusters configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "metrics_path: %s\n", cfg.MetricsPath)
		fmt.Fprintf(out, "clusters_path: %s\n", cfg.ClustersPath)
		if cfg.CatalogPath != "" {
			fmt.Fprintf(out, "catalog_path: %s\n", cfg.CatalogPath)
		}
		if cfg.Sheet != "" {
			fmt.Fprintf(out, "sheet: %s\n", cfg.Sheet)
		}
		fmt.Fprintf(out, "key_column: %s\n", cfg.KeyColumn)
		fmt.Fprintf(out, "title_column: %s\n", cfg.TitleColumn)
		fmt.Fprintf(out, "group_column: %s\n", cfg.GroupColumn)
		fmt.Fprintf(out, "combination_column: %s\n", cfg.CombinationColumn)
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(out, "format: %s\n", cfg.Format)
		fmt.Fprintf(out, "http_addr: %s\n", cfg.HTTPAddr)
		fmt.Fprintf(out, "shutdown_timeout_sec: %d\n", cfg.ShutdownTimeoutSec)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setKey(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setKey(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "metrics_path":
		c.MetricsPath = val
	case "clusters_path":
		c.ClustersPath = val
	case "catalog_path":
		c.CatalogPath = val
	case "sheet":
		c.Sheet = val
	case "key_column":
		c.KeyColumn = val
	case "title_column":
		c.TitleColumn = val
	case "group_column":
		c.GroupColumn = val
	case "combination_column":
		c.CombinationColumn = val
	case "top_n":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for top_n: %v", val)
		}
		c.TopN = i
	case "format":
		f, err := render.ParseFormat(val)
		if err != nil {
			return err
		}
		c.Format = f
	case "http_addr":
		c.HTTPAddr = val
	case "shutdown_timeout_sec":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for shutdown_timeout_sec: %v", val)
		}
		c.ShutdownTimeoutSec = i
	case "log_level":
		switch val {
		case "debug", "info", "warn", "error":
			c.LogLevel = val
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	case "log_format":
		switch val {
		case "text", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use text|json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
