package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rxclaims/internal/config"
	"rxclaims/internal/logging"
	"rxclaims/internal/pipeline"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the claims pipeline once",
		Example: `  rxclaims run --claims data/claims --pharmacies data/pharmacies --reverts data/reverts
  rxclaims run --config config.yaml --incremental --results-format parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runPipeline(cmd, *p)
		},
	}

	f := cmd.Flags()
	f.String("claims", "", "claims source folder")
	f.String("pharmacies", "", "pharmacy directory folder")
	f.String("reverts", "", "reverts source folder")
	f.Bool("incremental", false, "only stage claim files without an artifact")
	f.String("staging-dir", "", "staging artifact folder")
	f.String("results-dir", "", "results folder")
	f.String("results-format", "", "results file format: json or parquet")
	f.String("metrics-backend", "", "metrics backend: none, pushgateway or datadog (env RXCLAIMS_METRICS_BACKEND)")
	return cmd
}

func runPipeline(cmd *cobra.Command, p config.Pipeline) error {
	if printIssues(cmd.ErrOrStderr(), config.ValidatePipeline(p)) {
		return errInvalidConfig
	}

	if err := logging.Initialize(p.Log); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Sync()

	flush := setupMetrics(p)
	defer flush()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := pipeline.Run(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"run %s: %d claims, %d staged rows, %d metrics, %d top chains, %d quantities\n",
		sum.RunID, sum.Claims, sum.StagingRows, sum.Metrics, sum.TopChains, sum.Quantities)
	return nil
}
