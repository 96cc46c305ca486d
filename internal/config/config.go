package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/utils"
)

const dirName = ".metroclusters"

// Global configuration structure.
type Global struct {
	// Dataset inputs
	MetricsPath  string `mapstructure:"metrics_path" yaml:"metrics_path"`
	ClustersPath string `mapstructure:"clusters_path" yaml:"clusters_path"`
	CatalogPath  string `mapstructure:"catalog_path" yaml:"catalog_path"`
	Sheet        string `mapstructure:"sheet" yaml:"sheet"`

	KeyColumn         string `mapstructure:"key_column" yaml:"key_column"`
	TitleColumn       string `mapstructure:"title_column" yaml:"title_column"`
	GroupColumn       string `mapstructure:"group_column" yaml:"group_column"`
	CombinationColumn string `mapstructure:"combination_column" yaml:"combination_column"`

	// Views
	TopN   int    `mapstructure:"top_n" yaml:"top_n"`
	Format string `mapstructure:"format" yaml:"format"`

	// Server
	HTTPAddr           string `mapstructure:"http_addr" yaml:"http_addr"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// DefaultPath returns ~/.metroclusters/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes c to cfgFile, or to ~/.metroclusters/config.yaml when cfgFile is empty.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; CLI flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("METRO")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("metrics_path", "")
	v.SetDefault("clusters_path", "")
	v.SetDefault("catalog_path", "")
	v.SetDefault("sheet", "")
	v.SetDefault("key_column", "CBSA Code")
	v.SetDefault("title_column", "CBSA Title")
	v.SetDefault("group_column", "Cluster")
	v.SetDefault("combination_column", "Combination")
	v.SetDefault("top_n", 5)
	v.SetDefault("format", "table")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("shutdown_timeout_sec", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.TopN < 0 {
		return nil, fmt.Errorf("invalid top_n: %d", c.TopN)
	}
	if c.ShutdownTimeoutSec <= 0 {
		c.ShutdownTimeoutSec = 10
	}
	return &c, nil
}
