// Package allocation redistributes a fixed pool of NFTs across eligible holders
// in proportion to their current holdings.
package allocation

import (
	"math/rand/v2"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/luxfi/redistribute/pkg/ledger"
)

// Redistributor computes redistribution reports for a fixed set of accounts
type Redistributor struct {
	sources    AccountSet
	ineligible AccountSet
	shuffler   Shuffler
	buckets    Histogram
}

// NewRedistributor creates a new redistributor. A nil shuffler gets a randomly seeded one.
func NewRedistributor(sources, ineligible []string, shuffler Shuffler) *Redistributor {
	if shuffler == nil {
		shuffler = NewShuffler(rand.Uint64())
	}
	return &Redistributor{
		sources:    NewAccountSet(sources...),
		ineligible: NewAccountSet(ineligible...),
		shuffler:   shuffler,
		buckets:    DefaultBuckets,
	}
}

// NewShuffler returns a PCG-backed shuffler for seed
func NewShuffler(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Redistribute is shorthand for NewRedistributor(...).Redistribute(records)
func Redistribute(records []ledger.NFTRecord, sources, ineligible []string, shuffler Shuffler) (*Report, error) {
	return NewRedistributor(sources, ineligible, shuffler).Redistribute(records)
}

// Redistribute partitions records, apportions the pool, assigns concrete NFTs and
// validates conservation. No report is returned on error.
func (r *Redistributor) Redistribute(records []ledger.NFTRecord) (*Report, error) {
	part := NewPartition(records, r.sources, r.ineligible)
	poolSize := len(part.Pool)
	for _, nft := range part.Pool {
		log.WithFields(log.Fields{
			"nft_id": nft.ID,
			"owner":  nft.Owner,
			"serial": nft.Serial,
			"taxon":  nft.Taxon,
		}).Debug("Found pool NFT")
	}

	shares, remainder, err := Apportion(part.Eligible, poolSize)
	if err != nil {
		return nil, err
	}

	if err := Assign(shares, part.Pool, r.shuffler); err != nil {
		return nil, err
	}
	if err := Validate(shares, part.Pool); err != nil {
		return nil, err
	}

	assigned := 0
	for _, sh := range shares {
		assigned += len(sh.AssignedItems)
	}

	holders := make([]HolderShare, len(shares))
	copy(holders, shares)
	sort.Slice(holders, func(i, j int) bool {
		if holders[i].NewTotal != holders[j].NewTotal {
			return holders[i].NewTotal > holders[j].NewTotal
		}
		if holders[i].CurrentCount != holders[j].CurrentCount {
			return holders[i].CurrentCount > holders[j].CurrentCount
		}
		return holders[i].Owner < holders[j].Owner
	})

	return &Report{
		Stats: Stats{
			TotalRecords:   part.Records,
			Burned:         part.Burned,
			Active:         part.Records - part.Burned,
			PoolSize:       poolSize,
			EligibleOwners: len(shares),
			EligibleTotal:  part.EligibleTotal(),
			Remainder:      remainder,
		},
		Holders:       holders,
		Distribution:  NewHistogram(holders, r.buckets),
		PoolByAccount: part.PoolByAccount,
		PoolByTaxon:   part.PoolByTaxon,
		Unassigned:    poolSize - assigned,
	}, nil
}
