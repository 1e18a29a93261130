package main

import (
	"fmt"
	"os"

	"github.com/aretw0/buildsync/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "buildsync",
	Short: "buildsync drives a character build session",
	Long: `buildsync owns a single character build, recalculates it through a
calculation engine on every change and publishes the result to observers over
HTTP, MCP or the terminal.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to a buildsync YAML config file")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("data-dir", "", "Directory containing game data")
	flags.String("manifest", "", "Engine manifest (engine image)")
	flags.String("schema", "", "Config option schema (YAML)")
	flags.String("storage", "", "Disk cache driver: memory, file, redis or sqlite")
	flags.String("storage-path", "", "Directory (file) or database path (sqlite) of the disk cache")
	flags.String("redis-addr", "", "Redis address for the redis driver")
}

// loadConfig reads the config file and applies the persistent flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"log-level", &cfg.Log.Level},
		{"data-dir", &cfg.DataDir},
		{"manifest", &cfg.EngineManifest},
		{"schema", &cfg.SchemaPath},
		{"storage", &cfg.Storage.Driver},
		{"storage-path", &cfg.Storage.Path},
		{"redis-addr", &cfg.Storage.RedisAddr},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.target, _ = cmd.Flags().GetString(o.flag)
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
