package main

import (
	"encoding/json"
	"strings"

	"github.com/UnknownOlympus/locus/internal/config"
	"github.com/UnknownOlympus/locus/internal/metrics"
	"github.com/UnknownOlympus/locus/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var resolveOptions struct {
	postalOnly bool
	search     bool
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <cep or address>",
	Short: "Resolve a single query and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustLoad()
		logger := setupLogger(cfg.Env)

		newResolver, err := resolverFactory(cmd.Context(), cfg, logger, metrics.NewMetrics(prometheus.NewRegistry()))
		if err != nil {
			return err
		}
		res := newResolver()
		query := strings.Join(args, " ")

		var result *models.ResolutionResult
		switch {
		case resolveOptions.postalOnly:
			result, err = res.ResolvePostalCode(cmd.Context(), query)
		case resolveOptions.search:
			result, err = res.Search(cmd.Context(), query)
		default:
			result, err = res.Resolve(cmd.Context(), query)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveOptions.postalOnly, "postal-code", false, "accept only an 8-digit CEP")
	resolveCmd.Flags().BoolVar(&resolveOptions.search, "search", false, "list free-text candidates without the cascade")
	resolveCmd.MarkFlagsMutuallyExclusive("postal-code", "search")
}
