package allocation

import (
	"sort"

	"github.com/luxfi/redistribute/pkg/ledger"
)

// Partition splits collected records into the pool and the eligible ownership counts
type Partition struct {
	Records       int
	Burned        int
	Pool          []ledger.NFTRecord
	Eligible      map[string]int
	PoolByAccount map[string]int
	PoolByTaxon   map[uint32]int
}

// NewPartition drops burned records, collects the pool owned by sources and counts
// the holdings of every account outside sources and ineligible. The pool is sorted by id.
func NewPartition(records []ledger.NFTRecord, sources, ineligible AccountSet) Partition {
	p := Partition{
		Records:       len(records),
		Eligible:      make(map[string]int),
		PoolByAccount: make(map[string]int, len(sources)),
		PoolByTaxon:   make(map[uint32]int),
	}
	for account := range sources {
		p.PoolByAccount[account] = 0
	}

	for _, nft := range records {
		switch {
		case nft.Burned:
			p.Burned++
		case sources.Has(nft.Owner):
			p.Pool = append(p.Pool, nft)
			p.PoolByAccount[nft.Owner]++
			p.PoolByTaxon[nft.Taxon]++
		case ineligible.Has(nft.Owner):
		default:
			p.Eligible[nft.Owner]++
		}
	}

	sort.Slice(p.Pool, func(i, j int) bool {
		return p.Pool[i].ID < p.Pool[j].ID
	})

	return p
}

// EligibleTotal is the number of active NFTs held by eligible owners
func (p Partition) EligibleTotal() int {
	total := 0
	for _, c := range p.Eligible {
		total += c
	}
	return total
}
