package service

import (
	"fmt"
	"math"

	"golang-stock-ranker/internal/entity"
)

// simpleMovingAverage returns the rolling mean of values over window. The
// first window-1 entries are NaN.
func simpleMovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// exponentialMovingAverage returns the recursive EMA with smoothing
// 2/(window+1), seeded from the first value.
func exponentialMovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(window) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// percentChange returns the fractional change over the given number of
// periods. Entries without a full lookback, or with a zero or non-finite
// base, are 0 so partial histories still contribute a usable series.
func percentChange(values []float64, periods int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < periods {
			continue
		}
		base := values[i-periods]
		if base == 0 {
			continue
		}
		change := (values[i] - base) / base
		if math.IsInf(change, 0) || math.IsNaN(change) {
			continue
		}
		out[i] = change
	}
	return out
}

// alignTail trims two series to a common length, keeping the most recent
// entries of each. Series from different sources rarely agree on history
// depth, so comparisons anchor on the shared tail.
func alignTail(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[len(a)-n:], b[len(b)-n:]
}

// alignedCloses pairs each bar with the benchmark close of the same date.
// Both inputs must be chronologically sorted. A date the benchmark did not
// trade carries its last known close forward; bars predating the
// benchmark's first close use that first close, so a symbol with an
// unfilled gap still compares against the benchmark of its own dates
// rather than a count-shifted tail.
func alignedCloses(bars, benchmark []entity.Bar) []float64 {
	out := make([]float64, len(bars))
	if len(benchmark) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	last := benchmark[0].Close
	j := 0
	for i, b := range bars {
		for j < len(benchmark) && !benchmark[j].Date.After(b.Date) {
			last = benchmark[j].Close
			j++
		}
		out[i] = last
	}
	return out
}

// BuildDerived computes a symbol's indicator columns once for reuse across
// methods and the table assembler.
func BuildDerived(series *entity.SymbolSeries, maWindows, vmaWindows []int) entity.DerivedSeries {
	derived := make(entity.DerivedSeries, len(maWindows)+len(vmaWindows))
	closes := series.Closes()
	volumes := series.Volumes()
	for _, w := range maWindows {
		derived[fmt.Sprintf("MA%d", w)] = simpleMovingAverage(closes, w)
	}
	for _, w := range vmaWindows {
		derived[fmt.Sprintf("VMA%d", w)] = simpleMovingAverage(volumes, w)
	}
	return derived
}
