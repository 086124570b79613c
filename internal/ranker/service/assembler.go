package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/pkg/utils"
)

// SymbolResult carries everything one symbol contributes to the final
// table. Each symbol's result is computed independently and written into
// its own slot, so score computation can fan out without shared state.
type SymbolResult struct {
	Series  *entity.SymbolSeries
	Derived entity.DerivedSeries
	Info    *entity.SymbolInfo

	Scores map[string]entity.StrengthScore

	// Lead-method RS snapshots: latest and 1/3/6 months back.
	RS, RS1M, RS3M, RS6M float64
}

// AssembleTable joins per-symbol results, ratings and derived columns into
// the finalized table: rows sorted by the lead method's rating descending,
// ties broken by symbol ascending.
func AssembleTable(
	results map[string]*SymbolResult,
	ratings map[string]map[string]entity.Rating,
	historical map[string]map[string]entity.Rating,
	leadMethod string,
	methods []string,
	maWindows, vmaWindows []int,
	asOf time.Time,
	exclusions []entity.Exclusion,
) *entity.RankingTable {
	rows := make([]entity.RankingRow, 0, len(results))
	for symbol, res := range results {
		row := entity.RankingRow{
			Symbol:  symbol,
			Price:   res.Series.LastClose(),
			Scores:  res.Scores,
			Ratings: make(map[string]entity.Rating, len(methods)),
			RS:      res.RS,
			RS1M:    res.RS1M,
			RS3M:    res.RS3M,
			RS6M:    res.RS6M,
		}
		if res.Info != nil {
			row.Name = res.Info.Name
			row.Sector = res.Info.Sector
			row.Industry = res.Info.Industry
		}
		for _, m := range methods {
			row.Ratings[m] = ratings[m][symbol]
		}
		row.Rating1M = historical["1m"][symbol]
		row.Rating3M = historical["3m"][symbol]
		row.Rating6M = historical["6m"][symbol]

		row.PriceMARatio = ratioColumns(res.Series.LastClose(), res.Derived, "MA", maWindows)
		lastVolume := 0.0
		if n := len(res.Series.Bars); n > 0 {
			lastVolume = float64(res.Series.Bars[n-1].Volume)
		}
		row.VolumeVMRatio = ratioColumns(lastVolume, res.Derived, "VMA", vmaWindows)
		row.WeeksUp = WeeksUp(res.Series.Bars)

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		ri, rj := rows[i].Ratings[leadMethod], rows[j].Ratings[leadMethod]
		// Rated rows first, higher ratings first, then symbol for determinism.
		if ri.Valid != rj.Valid {
			return ri.Valid
		}
		if ri.Value != rj.Value {
			return ri.Value > rj.Value
		}
		return rows[i].Symbol < rows[j].Symbol
	})

	// SnapshotID stays zero here; the orchestrator stamps the reproducible
	// run-derived ID so identical runs publish identical tables.
	return &entity.RankingTable{
		AsOf:       asOf,
		LeadMethod: leadMethod,
		Methods:    methods,
		Rows:       rows,
		Exclusions: exclusions,
	}
}

// ratioColumns computes latest / indicator for each window. NaN marks a
// window the symbol's history cannot support.
func ratioColumns(latest float64, derived entity.DerivedSeries, prefix string, windows []int) map[int]float64 {
	out := make(map[int]float64, len(windows))
	for _, w := range windows {
		column := derived[fmt.Sprintf("%s%d", prefix, w)]
		if len(column) == 0 {
			out[w] = math.NaN()
			continue
		}
		ma := column[len(column)-1]
		if math.IsNaN(ma) || ma == 0 {
			out[w] = math.NaN()
			continue
		}
		out[w] = latest / ma
	}
	return out
}

// WeeksUp counts the most recent consecutive weekly closes strictly above
// the prior week's close. Any down or flat week resets the count.
func WeeksUp(bars []entity.Bar) int {
	weekly := weeklyCloses(bars)
	count := 0
	for i := len(weekly) - 1; i > 0; i-- {
		if weekly[i] > weekly[i-1] {
			count++
		} else {
			break
		}
	}
	return count
}

// weeklyCloses resamples daily bars to one close per ISO week, keeping the
// last trading day of each week.
func weeklyCloses(bars []entity.Bar) []float64 {
	var closes []float64
	for i, b := range bars {
		if i > 0 && utils.SameISOWeek(bars[i-1].Date, b.Date) {
			closes[len(closes)-1] = b.Close
			continue
		}
		closes = append(closes, b.Close)
	}
	return closes
}
