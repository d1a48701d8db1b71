package commands

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/luxfi/redistribute/pkg/config"
	"github.com/luxfi/redistribute/pkg/db"
	"github.com/luxfi/redistribute/pkg/ledger"
)

// collect walks every page for the configured issuer/taxon into an in-memory store
// and returns the distinct records in id order
func collect(ctx context.Context, cfg *config.Config) ([]ledger.NFTRecord, error) {
	store, err := db.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	client := ledger.NewClient(cfg.Endpoint, nil, cfg.RequestTimeout)
	collector := ledger.NewCollector(client, ledger.CollectorConfig{RequestDelay: cfg.RequestDelay})

	duplicates := 0
	stats, err := collector.Each(ctx, cfg.Issuer, cfg.Taxon, cfg.PageSize, func(batch []ledger.NFTRecord) error {
		added, err := db.PutAll(store, batch)
		if err != nil {
			return fmt.Errorf("failed to store batch: %w", err)
		}
		duplicates += len(batch) - added
		return nil
	})
	if err != nil {
		return nil, err
	}

	if duplicates > 0 {
		log.WithFields(log.Fields{
			"duplicates": duplicates,
			"records":    stats.Records,
		}).Warn("Node returned duplicate NFT ids across pages")
	}

	return store.Records()
}
