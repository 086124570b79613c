package entity

// MetricPoint is one reported value of a financial metric.
type MetricPoint struct {
	Period string  `json:"period"` // e.g. "2024Q2" or "2023"
	Value  float64 `json:"value"`
}

// FinancialReport carries the fundamentals a symbol contributes to the EPS
// relative-strength calculation.
type FinancialReport struct {
	Symbol       string        `json:"symbol"`
	QuarterlyEPS []MetricPoint `json:"quarterly_eps"`
	AnnualEPS    []MetricPoint `json:"annual_eps"`
	// MarketCap weights the symbol's EPS in the universe benchmark.
	MarketCap float64 `json:"market_cap"`
}

// SymbolInfo is descriptive metadata attached to ranking rows.
type SymbolInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}
