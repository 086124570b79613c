package service

import (
	"fmt"
	"sort"
	"time"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/pkg/utils"
)

// Normalizer aligns raw per-symbol histories onto the union of trading
// dates observed across the universe. It is a pure transform: symbols that
// cannot be normalized are excluded and reported, never failed.
type Normalizer struct {
	minBars int
}

// NewNormalizer creates a Normalizer. minBars is the minimum aligned bar
// count a symbol needs to stay in the run; it should cover the longest
// lookback window used downstream.
func NewNormalizer(minBars int) *Normalizer {
	return &Normalizer{minBars: minBars}
}

// Normalize dedupes, sorts and reindexes each symbol's bars onto the union
// trading-day index, forward-filling at most one consecutive missing bar.
// Symbols with fewer than minBars aligned bars come back as exclusions.
func (n *Normalizer) Normalize(raw map[string][]entity.Bar) (map[string]*entity.SymbolSeries, []entity.Exclusion) {
	cleaned := make(map[string][]entity.Bar, len(raw))
	for symbol, bars := range raw {
		cleaned[symbol] = dedupeSort(bars)
	}

	index := unionIndex(cleaned)

	series := make(map[string]*entity.SymbolSeries, len(cleaned))
	var exclusions []entity.Exclusion
	for symbol, bars := range cleaned {
		aligned := reindex(bars, index)
		if len(aligned) < n.minBars {
			exclusions = append(exclusions, entity.Exclusion{
				Symbol: symbol,
				Reason: fmt.Sprintf("%v: %d bars < min %d", entity.ErrDataInsufficient, len(aligned), n.minBars),
			})
			continue
		}
		series[symbol] = &entity.SymbolSeries{Symbol: symbol, Bars: aligned}
	}

	sort.Slice(exclusions, func(i, j int) bool { return exclusions[i].Symbol < exclusions[j].Symbol })
	return series, exclusions
}

// dedupeSort keys bars by calendar date, last write wins, then sorts
// chronologically.
func dedupeSort(bars []entity.Bar) []entity.Bar {
	byDate := make(map[time.Time]entity.Bar, len(bars))
	for _, b := range bars {
		b.Date = utils.DateOnly(b.Date)
		byDate[b.Date] = b
	}
	out := make([]entity.Bar, 0, len(byDate))
	for _, b := range byDate {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// unionIndex builds the sorted union of trading dates across all symbols.
func unionIndex(cleaned map[string][]entity.Bar) []time.Time {
	seen := make(map[time.Time]bool)
	var index []time.Time
	for _, bars := range cleaned {
		for _, b := range bars {
			if !seen[b.Date] {
				seen[b.Date] = true
				index = append(index, b.Date)
			}
		}
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })
	return index
}

// reindex walks the union index from the symbol's first date and fills a
// gap of exactly one date by carrying the prior close forward as a flat
// zero-volume bar. Longer gaps stay unfilled and shorten the series, which
// the minBars gate then catches.
func reindex(bars []entity.Bar, index []time.Time) []entity.Bar {
	if len(bars) == 0 {
		return nil
	}
	byDate := make(map[time.Time]entity.Bar, len(bars))
	for _, b := range bars {
		byDate[b.Date] = b
	}

	first := bars[0].Date
	out := make([]entity.Bar, 0, len(index))
	missing := 0
	for _, date := range index {
		if date.Before(first) {
			continue
		}
		if bar, ok := byDate[date]; ok {
			out = append(out, bar)
			missing = 0
			continue
		}
		missing++
		if missing == 1 && len(out) > 0 {
			prev := out[len(out)-1]
			out = append(out, entity.Bar{
				Date:  date,
				Open:  prev.Close,
				High:  prev.Close,
				Low:   prev.Close,
				Close: prev.Close,
			})
		}
	}
	return out
}
