package commands

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/luxfi/redistribute/pkg/allocation"
	"github.com/luxfi/redistribute/pkg/config"
	"github.com/luxfi/redistribute/pkg/report"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect, redistribute and write the report",
		Long: `Collect every NFT for the issuer and taxon, apportion the NFTs held by the source
accounts across eligible holders, assign concrete NFTs at random and write the report.

Nothing is written when collection or allocation fails.`,
		Example: `  # Reference run with a fixed seed
  redistribute run --expected-pool-size 546 --seed 42

  # Two source accounts, CSV next to the JSON report
  redistribute run --source rA... --source rB... --output-csv holders.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if cfg.Output == "" {
				return fmt.Errorf("output is required")
			}
			if err := setupLogging(cfg.LogLevel); err != nil {
				return err
			}
			log.Debugf("Loaded config: %s", cfg)

			return runRedistribution(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runRedistribution(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := collect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}
	log.WithField("records", len(records)).Info("Collection complete")

	result, err := allocation.Redistribute(records, cfg.Sources, cfg.Ineligible, allocation.NewShuffler(cfg.Seed))
	if err != nil {
		return fmt.Errorf("allocation failed: %w", err)
	}

	warning := allocation.CheckExpectedPoolSize(result, cfg.ExpectedPoolSize)
	if warning != nil {
		log.WithFields(log.Fields{
			"expected": warning.Expected,
			"found":    warning.Found,
			"by_taxon": warning.ByTaxon,
		}).Warn(warning.Error())
	}

	run := report.NewRun(cfg.Issuer, cfg.Taxon, cfg.Seed, cfg.Sources, cfg.Ineligible, cfg.ExpectedPoolSize)
	doc := report.NewDocument(run, result, warning)

	if err := report.WriteJSON(cfg.Output, doc); err != nil {
		return fmt.Errorf("report failed: %w", err)
	}
	if cfg.OutputCSV != "" {
		if err := report.WriteHoldersCSV(cfg.OutputCSV, result); err != nil {
			return fmt.Errorf("report failed: %w", err)
		}
	}
	if cfg.PostgresURL != "" {
		sink, err := report.OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("report failed: %w", err)
		}
		defer sink.Close()
		if err := sink.Save(ctx, doc); err != nil {
			return fmt.Errorf("report failed: %w", err)
		}
	}

	report.PrintSummary(out, result, cfg.Top)
	fmt.Fprintf(out, "\nDetailed results have been saved to %s (run %s, seed %d)\n", cfg.Output, run.ID, cfg.Seed)
	if cfg.OutputCSV != "" {
		fmt.Fprintf(out, "Holder CSV saved to %s\n", cfg.OutputCSV)
	}
	return nil
}
