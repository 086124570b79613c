package dto

// RankingResponse is the API payload for the latest ranking table.
type RankingResponse struct {
	SnapshotID string           `json:"snapshot_id"`
	AsOf       string           `json:"as_of"`
	LeadMethod string           `json:"lead_method"`
	Rows       []RankingRowView `json:"rows"`
	Excluded   int              `json:"excluded"`
}

// RankingRowView flattens a ranking row for JSON output. Ratios and absent
// ratings are pointers so missing values serialize as null, not zero.
type RankingRowView struct {
	Rank     int     `json:"rank"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name,omitempty"`
	Sector   string  `json:"sector,omitempty"`
	Industry string  `json:"industry,omitempty"`
	Price    float64 `json:"price"`

	RS   *float64 `json:"rs"`
	RS1M *float64 `json:"rs_1m"`
	RS3M *float64 `json:"rs_3m"`
	RS6M *float64 `json:"rs_6m"`

	Ratings map[string]*int `json:"ratings"`

	Rating1M *int `json:"rating_1m"`
	Rating3M *int `json:"rating_3m"`
	Rating6M *int `json:"rating_6m"`

	PriceMARatio  map[string]*float64 `json:"price_ma_ratio"`
	VolumeVMRatio map[string]*float64 `json:"volume_vma_ratio"`
	WeeksUp       int                 `json:"weeks_up"`
}

// ExclusionsResponse lists the symbols dropped from the latest run.
type ExclusionsResponse struct {
	SnapshotID string          `json:"snapshot_id"`
	Exclusions []ExclusionView `json:"exclusions"`
}

// ExclusionView is one excluded symbol with its reason.
type ExclusionView struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// ErrorResponse is the API error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
