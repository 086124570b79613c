package entity

import (
	"time"

	"github.com/google/uuid"
)

// StrengthScore is the raw relative-strength value of one symbol for one
// method. Valid is false when the symbol lacks the history the method
// needs; an absent score is never reported as zero.
type StrengthScore struct {
	Value float64
	Valid bool
}

// Score builds a present StrengthScore.
func Score(v float64) StrengthScore {
	return StrengthScore{Value: v, Valid: true}
}

// AbsentScore is the zero StrengthScore, kept for readability at call sites.
var AbsentScore = StrengthScore{}

// Rating is a 1-99 percentile rating. Valid mirrors the underlying score.
type Rating struct {
	Value int
	Valid bool
}

// RankingRow is one symbol's row in the final table.
type RankingRow struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`

	Price float64 `json:"price"`

	// Per-method raw scores and ratings, keyed by method identifier.
	Scores  map[string]StrengthScore `json:"-"`
	Ratings map[string]Rating        `json:"-"`

	// Lead-method RS value snapshots and their ratings.
	RS       float64 `json:"rs"`
	RS1M     float64 `json:"rs_1m"`
	RS3M     float64 `json:"rs_3m"`
	RS6M     float64 `json:"rs_6m"`
	Rating1M Rating  `json:"-"`
	Rating3M Rating  `json:"-"`
	Rating6M Rating  `json:"-"`

	// Auxiliary columns. NaN marks an absent ratio.
	PriceMARatio  map[int]float64 `json:"-"`
	VolumeVMRatio map[int]float64 `json:"-"`
	WeeksUp       int             `json:"weeks_up"`
}

// Exclusion records a symbol dropped from the run and why.
type Exclusion struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// RankingTable is the finalized, read-only result of one run. Rows are
// sorted by the lead method's rating descending, ties broken by symbol
// ascending.
type RankingTable struct {
	SnapshotID uuid.UUID    `json:"snapshot_id"`
	AsOf       time.Time    `json:"as_of"`
	LeadMethod string       `json:"lead_method"`
	Methods    []string     `json:"methods"`
	Rows       []RankingRow `json:"rows"`
	Exclusions []Exclusion  `json:"exclusions"`
}

// Top returns the first n rows, or all rows if fewer exist.
func (t *RankingTable) Top(n int) []RankingRow {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}
