package allocation

import (
	"fmt"

	"github.com/luxfi/redistribute/pkg/ledger"
)

// Shuffler permutes n elements through swap. *math/rand/v2.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Assign shuffles a private copy of the pool and deals each share its additional count
// from the front, in the order shares are given. Items left over are an error.
func Assign(shares []HolderShare, pool []ledger.NFTRecord, shuffler Shuffler) error {
	remaining := make([]ledger.NFTRecord, len(pool))
	copy(remaining, pool)
	shuffler.Shuffle(len(remaining), func(i, j int) {
		remaining[i], remaining[j] = remaining[j], remaining[i]
	})

	for i := range shares {
		n := shares[i].AdditionalCount
		if n > len(remaining) {
			return fmt.Errorf("%w: %s needs %d NFTs but only %d remain", ErrAllocationMismatch, shares[i].Owner, n, len(remaining))
		}
		shares[i].AssignedItems = append([]ledger.NFTRecord{}, remaining[:n]...)
		remaining = remaining[n:]
	}

	if len(remaining) != 0 {
		return fmt.Errorf("%w: %d NFTs left unassigned", ErrAllocationMismatch, len(remaining))
	}
	return nil
}

// Validate recomputes the totals and checks every pool item went to exactly one owner
func Validate(shares []HolderShare, pool []ledger.NFTRecord) error {
	additional, assigned := 0, 0
	seen := make(map[string]int, len(pool))
	for _, s := range shares {
		if s.AdditionalCount < 0 {
			return fmt.Errorf("%w: negative allocation for %s", ErrAllocationMismatch, s.Owner)
		}
		additional += s.AdditionalCount
		assigned += len(s.AssignedItems)
		for _, nft := range s.AssignedItems {
			seen[nft.ID]++
		}
	}

	if additional != len(pool) {
		return fmt.Errorf("%w: allocated %d NFTs instead of %d", ErrAllocationMismatch, additional, len(pool))
	}
	if assigned != len(pool) {
		return fmt.Errorf("%w: distributed %d NFTs instead of %d", ErrAllocationMismatch, assigned, len(pool))
	}
	for _, nft := range pool {
		if seen[nft.ID] != 1 {
			return fmt.Errorf("%w: NFT %s assigned %d times", ErrAllocationMismatch, nft.ID, seen[nft.ID])
		}
	}
	return nil
}
