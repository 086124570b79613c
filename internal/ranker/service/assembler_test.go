package service

import (
	"math"
	"testing"
	"time"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/pkg/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultWithBars(symbol string, closes []float64) *SymbolResult {
	bars := make([]entity.Bar, len(closes))
	for i, c := range closes {
		bars[i] = entity.Bar{Date: day(2).AddDate(0, 0, i), Close: c, Volume: 1000}
	}
	series := &entity.SymbolSeries{Symbol: symbol, Bars: bars}
	return &SymbolResult{
		Series:  series,
		Derived: BuildDerived(series, []int{2}, []int{2}),
		Scores:  map[string]entity.StrengthScore{},
		RS:      math.NaN(), RS1M: math.NaN(), RS3M: math.NaN(), RS6M: math.NaN(),
	}
}

func TestAssembleTable(t *testing.T) {
	asOf := day(10)
	methods := []string{common.MethodIBD}

	results := map[string]*SymbolResult{
		"AAA": resultWithBars("AAA", []float64{10, 11, 12}),
		"BBB": resultWithBars("BBB", []float64{20, 21, 22}),
		"CCC": resultWithBars("CCC", []float64{30, 31, 32}),
		"DDD": resultWithBars("DDD", []float64{40, 41, 42}),
	}
	ratings := map[string]map[string]entity.Rating{
		common.MethodIBD: {
			"AAA": {Value: 80, Valid: true},
			"BBB": {Value: 95, Valid: true},
			"CCC": {Value: 80, Valid: true},
			"DDD": {}, // unrated
		},
	}
	historical := map[string]map[string]entity.Rating{"1m": {}, "3m": {}, "6m": {}}

	table := AssembleTable(results, ratings, historical, common.MethodIBD, methods,
		[]int{2}, []int{2}, asOf, []entity.Exclusion{{Symbol: "EEE", Reason: "gone"}})

	t.Run("rows sort by lead rating desc then symbol asc, unrated last", func(t *testing.T) {
		require.Len(t, table.Rows, 4)
		assert.Equal(t, "BBB", table.Rows[0].Symbol)
		assert.Equal(t, "AAA", table.Rows[1].Symbol) // tie at 80 with CCC
		assert.Equal(t, "CCC", table.Rows[2].Symbol)
		assert.Equal(t, "DDD", table.Rows[3].Symbol)
		assert.False(t, table.Rows[3].Ratings[common.MethodIBD].Valid)
	})

	t.Run("ratio columns use the latest bar over the indicator", func(t *testing.T) {
		row := table.Rows[0] // BBB closes 20,21,22
		require.Contains(t, row.PriceMARatio, 2)
		assert.InDelta(t, 22.0/21.5, row.PriceMARatio[2], 1e-9)
		require.Contains(t, row.VolumeVMRatio, 2)
		assert.InDelta(t, 1.0, row.VolumeVMRatio[2], 1e-9)
	})

	t.Run("metadata carries through", func(t *testing.T) {
		assert.Equal(t, asOf, table.AsOf)
		assert.Equal(t, common.MethodIBD, table.LeadMethod)
		require.Len(t, table.Exclusions, 1)
		assert.Equal(t, "EEE", table.Exclusions[0].Symbol)
	})

	t.Run("snapshot id is left for the orchestrator", func(t *testing.T) {
		assert.Equal(t, uuid.Nil, table.SnapshotID)
	})

	t.Run("top clamps to the row count", func(t *testing.T) {
		assert.Len(t, table.Top(2), 2)
		assert.Len(t, table.Top(100), 4)
	})
}

func TestAssembleTableMissingIndicator(t *testing.T) {
	results := map[string]*SymbolResult{
		"AAA": resultWithBars("AAA", []float64{10}), // too short for MA2
	}
	ratings := map[string]map[string]entity.Rating{
		common.MethodIBD: {"AAA": {Value: 50, Valid: true}},
	}
	historical := map[string]map[string]entity.Rating{"1m": {}, "3m": {}, "6m": {}}

	table := AssembleTable(results, ratings, historical, common.MethodIBD,
		[]string{common.MethodIBD}, []int{2}, []int{2}, day(2), nil)

	require.Len(t, table.Rows, 1)
	assert.True(t, math.IsNaN(table.Rows[0].PriceMARatio[2]))
}

func weekBars(closes []float64) []entity.Bar {
	// one bar per week, Mondays
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]entity.Bar, len(closes))
	for i, c := range closes {
		bars[i] = entity.Bar{Date: start.AddDate(0, 0, 7*i), Close: c}
	}
	return bars
}

func TestWeeksUp(t *testing.T) {
	t.Run("counts trailing strictly rising weeks", func(t *testing.T) {
		assert.Equal(t, 3, WeeksUp(weekBars([]float64{10, 9, 10, 11, 12})))
	})

	t.Run("flat week resets the streak", func(t *testing.T) {
		assert.Equal(t, 0, WeeksUp(weekBars([]float64{10, 11, 11})))
	})

	t.Run("intraweek bars collapse to the last close", func(t *testing.T) {
		// Mon+Tue of week one, Mon of week two.
		bars := []entity.Bar{
			{Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), Close: 10},
			{Date: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), Close: 15},
			{Date: time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), Close: 12},
		}
		// week one closes at 15, so week two's 12 is a down week.
		assert.Equal(t, 0, WeeksUp(bars))
	})

	t.Run("empty and single-week histories count zero", func(t *testing.T) {
		assert.Equal(t, 0, WeeksUp(nil))
		assert.Equal(t, 0, WeeksUp(weekBars([]float64{10})))
	})
}
