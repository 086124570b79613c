package entity

import "time"

// Bar is a single OHLCV record.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// SymbolSeries is the normalized price history of one symbol: bars ordered
// chronologically, deduplicated by date, aligned to the run's trading-day
// index. It is immutable once built by the normalizer.
type SymbolSeries struct {
	Symbol string
	Bars   []Bar
}

// Closes returns the close column.
func (s *SymbolSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes returns the volume column as floats.
func (s *SymbolSeries) Volumes() []float64 {
	vols := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		vols[i] = float64(b.Volume)
	}
	return vols
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s *SymbolSeries) LastClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// DerivedSeries holds per-symbol indicator columns ("MA50", "VMA50", ...),
// each aligned to the symbol's bars. Values are NaN where the indicator is
// undefined. Computed once per run and shared across methods.
type DerivedSeries map[string][]float64
