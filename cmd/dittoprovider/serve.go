package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/adapter/rest"
	"github.com/marmos91/dittoprovider/pkg/config"
	"github.com/marmos91/dittoprovider/pkg/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve item descriptors and the pending update queue over HTTP",
	Long: `Serve builds the configured metadata store, content cache and
materializer, then exposes them through the REST API until interrupted.
When metrics are enabled a Prometheus endpoint is served on its own port.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveListen string

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Override server.listen")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Close()

	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("dittoprovider %s starting", version)
	logger.Info("Metadata store: %s, content cache: %s", cfg.Metadata.Type, cfg.Content.Type)

	metricsResult := config.InitializeMetrics(cfg)

	store, err := config.CreateMetadataStore(ctx, &cfg.Metadata, metricsResult.LookupCache)
	if err != nil {
		return err
	}
	defer store.Close()

	cache, err := config.CreateContentCache(ctx, &cfg.Content)
	if err != nil {
		return err
	}
	defer cache.Close()

	m, err := config.CreateMaterializer(&cfg.Provider, store, cache, nil, metricsResult.Materializer)
	if err != nil {
		return err
	}

	api := rest.New(rest.RESTConfig{
		Listen:          cfg.Server.Listen,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	api.AddHealthCheck("metadata", store.Healthcheck)
	api.AddHealthCheck("content", cache.Healthcheck)

	srv := server.New(m)
	srv.StopTimeout = cfg.Server.ShutdownTimeout
	if err := srv.AddAdapter(api); err != nil {
		return err
	}

	if metricsResult.Server != nil {
		go func() {
			if err := metricsResult.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
	}

	err = srv.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	logger.Info("dittoprovider stopped")
	return nil
}
