package allocation

import (
	"fmt"
	"sort"
)

// Rank orders shares by current holdings descending, then by owner ascending.
// Remainder units and physical items are handed out in this order.
func Rank(shares []HolderShare) {
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].CurrentCount != shares[j].CurrentCount {
			return shares[i].CurrentCount > shares[j].CurrentCount
		}
		return shares[i].Owner < shares[j].Owner
	})
}

// Apportion splits poolSize units across eligible owners by largest remainder:
// floor(poolSize*c/T) each, then one extra unit to the first R ranked owners.
// Shares are returned in rank order together with R.
func Apportion(eligible map[string]int, poolSize int) ([]HolderShare, int, error) {
	total := 0
	for _, c := range eligible {
		total += c
	}
	if total == 0 {
		return nil, 0, ErrEmptyEligiblePopulation
	}

	shares := make([]HolderShare, 0, len(eligible))
	allocated := 0
	for owner, count := range eligible {
		base := poolSize * count / total
		allocated += base
		shares = append(shares, HolderShare{
			Owner:           owner,
			CurrentCount:    count,
			Proportion:      float64(count) / float64(total),
			AdditionalCount: base,
		})
	}
	Rank(shares)

	remainder := poolSize - allocated
	if remainder < 0 || remainder >= len(shares) {
		return nil, 0, fmt.Errorf("%w: remainder %d for %d owners", ErrAllocationMismatch, remainder, len(shares))
	}
	for i := 0; i < remainder; i++ {
		shares[i].AdditionalCount++
	}
	for i := range shares {
		shares[i].NewTotal = shares[i].CurrentCount + shares[i].AdditionalCount
	}

	return shares, remainder, nil
}
