package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/redistribute/pkg/config"
	"github.com/luxfi/redistribute/pkg/report"
)

// NewFetchCommand creates the fetch command
func NewFetchCommand() *cobra.Command {
	var outputJSON string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Collect NFTs and print the current holder distribution",
		Long: `Collect every NFT for the issuer and taxon and print how they are currently held.
No redistribution is computed.`,
		Example: `  redistribute fetch --issuer rEzbi191M5AjrucxXKZWbR5QeyfpbedBcV --taxon 1 --top 20`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if err := setupLogging(cfg.LogLevel); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			records, err := collect(ctx, cfg)
			if err != nil {
				return fmt.Errorf("collection failed: %w", err)
			}

			holdings := report.NewHoldings(cfg.Issuer, cfg.Taxon, records)
			if outputJSON != "" {
				if err := report.WriteHoldingsJSON(outputJSON, holdings); err != nil {
					return fmt.Errorf("report failed: %w", err)
				}
			}

			report.PrintHoldings(cmd.OutOrStdout(), holdings, cfg.Top)
			if outputJSON != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nSaved JSON to %s\n", outputJSON)
			}
			return nil
		},
	}

	config.RegisterCollectFlags(cmd.Flags())
	cmd.Flags().StringVar(&outputJSON, "output-json", "", "Optional holder counts JSON path")
	return cmd
}
