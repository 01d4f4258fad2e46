package main

import (
	"context"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/config"
	"github.com/spf13/cobra"
)

var materializeCmd = &cobra.Command{
	Use:   "materialize <account> <fileID>",
	Short: "Build the item descriptor for one record",
	Long: `Materialize looks up a record in the configured metadata store and
prints the descriptor a host would receive for it. The content cache is
probed to report the download state.`,
	Args: cobra.ExactArgs(2),
	RunE: runMaterialize,
}

var materializeOutput string

func init() {
	materializeCmd.Flags().StringVarP(&materializeOutput, "output", "o", "table", "Output format: table, json, yaml")
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx := context.Background()

	store, err := config.CreateMetadataStore(ctx, &cfg.Metadata, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	cache, err := config.CreateContentCache(ctx, &cfg.Content)
	if err != nil {
		return err
	}
	defer cache.Close()

	m, err := config.CreateMaterializer(&cfg.Provider, store, cache, nil, nil)
	if err != nil {
		return err
	}

	d, err := m.MaterializeByID(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	return printDescriptor(materializeOutput, d)
}
