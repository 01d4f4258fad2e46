package main

import (
	"fmt"
	"os"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/config"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// configPath is the --config flag shared by every subcommand.
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dittoprovider",
	Short: "Item descriptor materializer for file provider hosts",
	Long: `dittoprovider turns locally persisted file and folder metadata into
the item descriptors a file provider host enumerates. It can seed the
metadata store, materialize single items, and serve descriptors and the
pending update queue over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: "+config.GetDefaultConfigPath()+")")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(materializeCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the configuration and configures the logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}
	return cfg, nil
}
