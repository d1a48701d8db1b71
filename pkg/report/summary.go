package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/luxfi/redistribute/pkg/allocation"
)

var hundred = decimal.NewFromInt(100)

// Percent renders part/whole as a fixed two decimal percentage
func Percent(part, whole int) string {
	if whole == 0 {
		return "0.00"
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole))).StringFixed(2)
}

// PrintSummary writes the console report for a run
func PrintSummary(w io.Writer, r *allocation.Report, topN int) {
	s := r.Stats
	fmt.Fprintf(w, "\n=== Current Statistics ===\n")
	fmt.Fprintf(w, "Total NFTs: %d\n", s.TotalRecords)
	fmt.Fprintf(w, "Burned NFTs: %d\n", s.Burned)
	fmt.Fprintf(w, "Active NFTs: %d\n", s.Active)
	fmt.Fprintf(w, "NFTs in source accounts: %d\n", s.PoolSize)

	accounts := make([]string, 0, len(r.PoolByAccount))
	for a := range r.PoolByAccount {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)
	for _, a := range accounts {
		fmt.Fprintf(w, "  %s: %d\n", a, r.PoolByAccount[a])
	}
	fmt.Fprintf(w, "Eligible owners: %d (holding %d NFTs)\n", s.EligibleOwners, s.EligibleTotal)
	fmt.Fprintf(w, "Remainder awarded by rank: %d\n", s.Remainder)

	top := r.Top(topN)
	if len(top) > 0 {
		fmt.Fprintf(w, "\n=== Top %d Holders After Redistribution ===\n", len(top))
		for i, h := range top {
			fmt.Fprintf(w, "%d. %s:\n", i+1, h.Owner)
			fmt.Fprintf(w, "   Current: %d NFTs\n", h.CurrentCount)
			fmt.Fprintf(w, "   Additional: %d NFTs\n", h.AdditionalCount)
			fmt.Fprintf(w, "   New Total: %d NFTs\n", h.NewTotal)
			fmt.Fprintf(w, "   Proportion: %s%%\n", Percent(h.CurrentCount, s.EligibleTotal))
			fmt.Fprintf(w, "   Assigned NFT Count: %d\n", len(h.AssignedItems))
		}
	}

	fmt.Fprintf(w, "\n=== Distribution After Redistribution ===\n")
	for _, b := range r.Distribution {
		fmt.Fprintf(w, "%s: %d owners\n", b.Label, b.Owners)
	}
}
