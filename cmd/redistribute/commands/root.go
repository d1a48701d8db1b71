package commands

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the redistribute command tree
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "redistribute",
		Short: "Redistribute NFTs held by source accounts across current holders",
		Long: `Redistribute collects every NFT of an issuer/taxon pair from an XRPL Clio node,
takes the NFTs held by the source accounts as a pool and hands it out to the remaining
holders in proportion to what they already own.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		NewRunCommand(),
		NewFetchCommand(),
	)
	return rootCmd
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}
