// Package report renders redistribution results as a JSON snapshot, a holders CSV,
// a console summary and an optional postgres row.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/luxfi/redistribute/pkg/allocation"
)

// Run identifies one invocation
type Run struct {
	ID                 uuid.UUID
	GeneratedAt        time.Time
	Issuer             string
	Taxon              uint32
	Seed               uint64
	SourceAccounts     []string
	IneligibleAccounts []string
	ExpectedPoolSize   int
}

// NewRun stamps a run with a fresh id and the current time
func NewRun(issuer string, taxon uint32, seed uint64, sources, ineligible []string, expectedPoolSize int) Run {
	return Run{
		ID:                 uuid.New(),
		GeneratedAt:        time.Now().UTC(),
		Issuer:             issuer,
		Taxon:              taxon,
		Seed:               seed,
		SourceAccounts:     sources,
		IneligibleAccounts: ineligible,
		ExpectedPoolSize:   expectedPoolSize,
	}
}

// AssignedNFT is the slim record kept per assigned item
type AssignedNFT struct {
	NFTID  string `json:"nft_id"`
	URI    string `json:"uri"`
	Serial uint32 `json:"serial"`
}

// Holder is one row of redistributionDetails
type Holder struct {
	Owner              string        `json:"owner"`
	CurrentCount       int           `json:"currentCount"`
	Proportion         float64       `json:"proportion"`
	AdditionalNFTs     int           `json:"additionalNFTs"`
	NewTotal           int           `json:"newTotal"`
	AssignedNFTDetails []AssignedNFT `json:"assignedNFTDetails"`
}

// Warning mirrors allocation.SanityWarning in the snapshot
type Warning struct {
	Message  string         `json:"message"`
	Expected int            `json:"expected"`
	Found    int            `json:"found"`
	ByTaxon  map[uint32]int `json:"byTaxon,omitempty"`
}

// Document is the persisted snapshot of a run
type Document struct {
	RunID              uuid.UUID `json:"runId"`
	GeneratedAt        time.Time `json:"generatedAt"`
	Issuer             string    `json:"issuer"`
	Taxon              uint32    `json:"taxon"`
	Seed               uint64    `json:"seed"`
	SourceAccounts     []string  `json:"sourceAccounts"`
	IneligibleAccounts []string  `json:"ineligibleAccounts"`
	ExpectedPoolSize   int       `json:"expectedPoolSize,omitempty"`

	TotalNFTs             int            `json:"totalNFTs"`
	BurnedNFTs            int            `json:"burnedNFTs"`
	ActiveNFTs            int            `json:"activeNFTs"`
	ExcludedAccountNFTs   int            `json:"excludedAccountNFTs"`
	UniqueOwners          int            `json:"uniqueOwners"`
	EligibleNFTs          int            `json:"eligibleNFTs"`
	Remainder             int            `json:"remainder"`
	PoolByAccount         map[string]int `json:"poolByAccount"`
	RedistributionDetails []Holder       `json:"redistributionDetails"`
	DistributionSummary   map[string]int `json:"distributionSummary"`
	UnassignedNFTs        int            `json:"unassignedNFTs"`
	SanityWarning         *Warning       `json:"sanityWarning,omitempty"`
}

// NewDocument combines run metadata with a report. warning may be nil.
func NewDocument(run Run, r *allocation.Report, warning *allocation.SanityWarning) *Document {
	doc := &Document{
		RunID:              run.ID,
		GeneratedAt:        run.GeneratedAt,
		Issuer:             run.Issuer,
		Taxon:              run.Taxon,
		Seed:               run.Seed,
		SourceAccounts:     orEmpty(run.SourceAccounts),
		IneligibleAccounts: orEmpty(run.IneligibleAccounts),
		ExpectedPoolSize:   run.ExpectedPoolSize,

		TotalNFTs:             r.Stats.TotalRecords,
		BurnedNFTs:            r.Stats.Burned,
		ActiveNFTs:            r.Stats.Active,
		ExcludedAccountNFTs:   r.Stats.PoolSize,
		UniqueOwners:          r.Stats.EligibleOwners,
		EligibleNFTs:          r.Stats.EligibleTotal,
		Remainder:             r.Stats.Remainder,
		PoolByAccount:         r.PoolByAccount,
		RedistributionDetails: make([]Holder, 0, len(r.Holders)),
		DistributionSummary:   r.Distribution.Counts(),
		UnassignedNFTs:        r.Unassigned,
	}

	for _, h := range r.Holders {
		assigned := make([]AssignedNFT, 0, len(h.AssignedItems))
		for _, nft := range h.AssignedItems {
			assigned = append(assigned, AssignedNFT{NFTID: nft.ID, URI: nft.URI, Serial: nft.Serial})
		}
		doc.RedistributionDetails = append(doc.RedistributionDetails, Holder{
			Owner:              h.Owner,
			CurrentCount:       h.CurrentCount,
			Proportion:         h.Proportion,
			AdditionalNFTs:     h.AdditionalCount,
			NewTotal:           h.NewTotal,
			AssignedNFTDetails: assigned,
		})
	}

	if warning != nil {
		doc.SanityWarning = &Warning{
			Message:  warning.Error(),
			Expected: warning.Expected,
			Found:    warning.Found,
			ByTaxon:  warning.ByTaxon,
		}
	}
	return doc
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
