package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/locus/internal/api"
	"github.com/UnknownOlympus/locus/internal/config"
	"github.com/UnknownOlympus/locus/internal/geocoding"
	"github.com/UnknownOlympus/locus/internal/metrics"
	"github.com/UnknownOlympus/locus/internal/repository"
	"github.com/UnknownOlympus/locus/internal/resolver"
	"github.com/UnknownOlympus/locus/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, when enabled, the address backfill",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Canceled on SIGINT/SIGTERM for graceful shutdown.
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, config.MustLoad())
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	newResolver, err := resolverFactory(ctx, cfg, logger, appMetrics)
	if err != nil {
		return err
	}
	registry := resolver.NewRegistry(newResolver, resolver.DefaultSources()...)

	var db api.Pinger
	if cfg.Backfill.Enabled {
		pool, errDB := repository.NewDatabase(ctx,
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if errDB != nil {
			return fmt.Errorf("failed to connect to DB: %w", errDB)
		}
		defer pool.Close()
		db = pool

		repo := repository.NewRepository(pool, logger)
		backfill := service.NewBackfillService(
			logger, repo, newResolver, appMetrics, cfg.Backfill.Workers, cfg.Backfill.Interval,
		)
		go backfill.Run(ctx)
	}

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	server := api.NewServer(logger, registry, reg, db)
	if err = server.Run(ctx, fmt.Sprintf(":%d", cfg.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorContext(ctx, "HTTP server failed", "error", err)
		return err
	}

	logger.InfoContext(ctx, "Application stopped gracefully.")

	return nil
}

// resolverFactory builds the three providers once and returns a constructor for resolvers
// sharing them.
func resolverFactory(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	appMetrics *metrics.Metrics,
) (func() *resolver.Resolver, error) {
	postal := geocoding.NewViaCEPRegistry(cfg.Provider.PostalRegistryURL, cfg.Provider.Timeout, logger)
	coords := geocoding.NewBrasilAPIRegistry(cfg.Provider.CoordinateRegistryURL, cfg.Provider.Timeout, logger)
	geocoder, err := geocoding.NewGeocoder(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Provider.GeocoderType),
		APIKey:    cfg.Provider.GeocoderKey,
		BaseURL:   cfg.Provider.GeocoderURL,
		RateLimit: cfg.Provider.GeocoderRateLimitPerSec,
		Timeout:   cfg.Provider.Timeout,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding provider: %w", err)
	}

	logger.InfoContext(ctx, "Providers initialized",
		"postal_registry", postal.Name(),
		"coordinate_registry", coords.Name(),
		"geocoder", geocoder.Name(),
	)

	return func() *resolver.Resolver {
		return resolver.New(logger, postal, coords, geocoder, appMetrics, resolver.Options{
			ProviderTimeout: cfg.Provider.Timeout,
			SearchLimit:     cfg.Provider.SearchLimit,
		})
	}, nil
}
