package ledger

import (
	"bytes"
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultRequestDelay keeps the collector under public Clio rate limits
const DefaultRequestDelay = 200 * time.Millisecond

// ErrRepeatedCursor is returned when a page hands back the cursor it was requested with
var ErrRepeatedCursor = errors.New("node returned the cursor it was sent")

// PageSource returns one page of NFTs per call
type PageSource interface {
	NFTsByIssuer(ctx context.Context, req PageRequest) (*Page, error)
}

// CollectorConfig configures the collector
type CollectorConfig struct {
	RequestDelay time.Duration
}

// Collector follows continuation cursors until the source is exhausted
type Collector struct {
	source PageSource
	delay  time.Duration
	sleep  func(context.Context, time.Duration) error
}

// CollectStats summarizes a finished walk
type CollectStats struct {
	Batches int
	Records int
	Elapsed time.Duration
}

// NewCollector creates a new collector
func NewCollector(source PageSource, config CollectorConfig) *Collector {
	if config.RequestDelay < 0 {
		config.RequestDelay = 0
	}
	return &Collector{
		source: source,
		delay:  config.RequestDelay,
		sleep:  sleepContext,
	}
}

// Each hands every page to fn in arrival order. Any failure, from the source or from fn,
// aborts the walk; nothing is kept for a resume.
func (c *Collector) Each(ctx context.Context, issuer string, taxon uint32, pageSize int, fn func([]NFTRecord) error) (CollectStats, error) {
	var (
		stats  CollectStats
		cursor Cursor
		start  = time.Now()
	)

	log.WithFields(log.Fields{"issuer": issuer, "taxon": taxon}).Info("Querying NFTs by issuer")

	for {
		stats.Batches++
		page, err := c.source.NFTsByIssuer(ctx, PageRequest{
			Issuer: issuer,
			Taxon:  taxon,
			Limit:  pageSize,
			Cursor: cursor,
		})
		if err != nil {
			return stats, &TransportError{Page: stats.Batches, Err: err}
		}

		if len(page.Items) > 0 {
			stats.Records += len(page.Items)
			log.WithFields(log.Fields{
				"batch": stats.Batches,
				"count": len(page.Items),
				"total": stats.Records,
			}).Info("Fetched NFT batch")

			if err := fn(page.Items); err != nil {
				return stats, err
			}
		}

		if page.NextCursor.Empty() {
			break
		}
		if bytes.Equal(page.NextCursor, cursor) {
			return stats, &TransportError{Page: stats.Batches, Err: ErrRepeatedCursor}
		}
		cursor = page.NextCursor

		if c.delay > 0 {
			if err := c.sleep(ctx, c.delay); err != nil {
				return stats, err
			}
		}
	}

	stats.Elapsed = time.Since(start)
	log.WithFields(log.Fields{
		"batches": stats.Batches,
		"records": stats.Records,
		"elapsed": stats.Elapsed.Round(time.Millisecond),
	}).Info("NFT query complete")

	return stats, nil
}

// FetchAll collects every record for an issuer/taxon pair
func (c *Collector) FetchAll(ctx context.Context, issuer string, taxon uint32, pageSize int) ([]NFTRecord, error) {
	var records []NFTRecord
	_, err := c.Each(ctx, issuer, taxon, pageSize, func(batch []NFTRecord) error {
		records = append(records, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
