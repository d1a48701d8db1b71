package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/luxfi/redistribute/pkg/ledger"
)

// HolderCount is one owner's current holding
type HolderCount struct {
	Owner string `json:"owner"`
	Count int    `json:"count"`
}

// Holdings is the current distribution of a collection, before any redistribution
type Holdings struct {
	GeneratedAt  time.Time     `json:"generatedAt"`
	Issuer       string        `json:"issuer"`
	Taxon        uint32        `json:"taxon"`
	TotalNFTs    int           `json:"totalNFTs"`
	BurnedNFTs   int           `json:"burnedNFTs"`
	UniqueOwners int           `json:"uniqueOwners"`
	Holders      []HolderCount `json:"holders"`
}

// NewHoldings counts live NFTs per owner, largest holders first
func NewHoldings(issuer string, taxon uint32, records []ledger.NFTRecord) *Holdings {
	h := &Holdings{
		GeneratedAt: time.Now().UTC(),
		Issuer:      issuer,
		Taxon:       taxon,
		TotalNFTs:   len(records),
		Holders:     []HolderCount{},
	}

	counts := make(map[string]int)
	for _, rec := range records {
		if rec.Burned {
			h.BurnedNFTs++
			continue
		}
		counts[rec.Owner]++
	}
	for owner, n := range counts {
		h.Holders = append(h.Holders, HolderCount{Owner: owner, Count: n})
	}
	sort.Slice(h.Holders, func(i, j int) bool {
		if h.Holders[i].Count != h.Holders[j].Count {
			return h.Holders[i].Count > h.Holders[j].Count
		}
		return h.Holders[i].Owner < h.Holders[j].Owner
	})
	h.UniqueOwners = len(h.Holders)
	return h
}

// WriteHoldingsJSON stores h atomically
func WriteHoldingsJSON(path string, h *Holdings) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal holdings: %w", err)
	}
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}

// PrintHoldings writes the holder summary for a collection
func PrintHoldings(w io.Writer, h *Holdings, topN int) {
	active := h.TotalNFTs - h.BurnedNFTs
	fmt.Fprintf(w, "\n=== Holder Summary ===\n")
	fmt.Fprintf(w, "Issuer: %s (taxon %d)\n", h.Issuer, h.Taxon)
	fmt.Fprintf(w, "Total NFTs: %d\n", h.TotalNFTs)
	fmt.Fprintf(w, "Burned NFTs: %d\n", h.BurnedNFTs)
	fmt.Fprintf(w, "Unique Owners: %d\n", h.UniqueOwners)

	if topN < 0 || topN > len(h.Holders) {
		topN = len(h.Holders)
	}
	if topN == 0 {
		return
	}
	fmt.Fprintf(w, "\nTop %d Holders:\n", topN)
	for i, hc := range h.Holders[:topN] {
		fmt.Fprintf(w, "  %d. %s: %d NFTs (%s%%)\n", i+1, hc.Owner, hc.Count, Percent(hc.Count, active))
	}
}
