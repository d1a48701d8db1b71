package allocation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/luxfi/redistribute/pkg/ledger"
)

var (
	// ErrEmptyEligiblePopulation is returned when no account can receive a share
	ErrEmptyEligiblePopulation = errors.New("no eligible holders")
	// ErrAllocationMismatch signals that assigned totals disagree with the pool size
	ErrAllocationMismatch = errors.New("allocation mismatch")
)

// HolderShare is one eligible owner's slice of the redistribution
type HolderShare struct {
	Owner           string             `json:"owner"`
	CurrentCount    int                `json:"currentCount"`
	Proportion      float64            `json:"proportion"`
	AdditionalCount int                `json:"additionalNFTs"`
	NewTotal        int                `json:"newTotal"`
	AssignedItems   []ledger.NFTRecord `json:"assignedNFTDetails"`
}

// Stats holds aggregate counts for a run
type Stats struct {
	TotalRecords   int `json:"totalNFTs"`
	Burned         int `json:"burnedNFTs"`
	Active         int `json:"activeNFTs"`
	PoolSize       int `json:"excludedAccountNFTs"`
	EligibleOwners int `json:"uniqueOwners"`
	EligibleTotal  int `json:"eligibleNFTs"`
	Remainder      int `json:"remainder"`
}

// Report is the pure-data result of a redistribution
type Report struct {
	Stats         Stats          `json:"stats"`
	Holders       []HolderShare  `json:"holders"`
	Distribution  Histogram      `json:"distribution"`
	PoolByAccount map[string]int `json:"poolByAccount"`
	PoolByTaxon   map[uint32]int `json:"poolByTaxon"`
	Unassigned    int            `json:"unassignedNFTs"`
}

// Top returns up to n holders in report order
func (r *Report) Top(n int) []HolderShare {
	if n > len(r.Holders) || n < 0 {
		n = len(r.Holders)
	}
	return r.Holders[:n]
}

// Holder looks up an owner's share
func (r *Report) Holder(owner string) (HolderShare, bool) {
	for _, h := range r.Holders {
		if h.Owner == owner {
			return h, true
		}
	}
	return HolderShare{}, false
}

// SanityWarning reports a pool size that differs from an external expectation. It never
// changes the result.
type SanityWarning struct {
	Expected int
	Found    int
	ByTaxon  map[uint32]int
}

func (w *SanityWarning) Error() string {
	return fmt.Sprintf("pool size mismatch: expected %d NFTs, found %d (difference %d)", w.Expected, w.Found, w.Found-w.Expected)
}

// CheckExpectedPoolSize compares the pool against expected. A non-positive expectation disables the check.
func CheckExpectedPoolSize(r *Report, expected int) *SanityWarning {
	if expected <= 0 || r.Stats.PoolSize == expected {
		return nil
	}
	return &SanityWarning{
		Expected: expected,
		Found:    r.Stats.PoolSize,
		ByTaxon:  r.PoolByTaxon,
	}
}

// AccountSet is a set of account identifiers
type AccountSet map[string]struct{}

// NewAccountSet builds a set from a list of accounts
func NewAccountSet(accounts ...string) AccountSet {
	set := make(AccountSet, len(accounts))
	for _, a := range accounts {
		set[a] = struct{}{}
	}
	return set
}

// Has reports membership
func (s AccountSet) Has(account string) bool {
	_, ok := s[account]
	return ok
}

// Sorted returns the members in ascending order
func (s AccountSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
