package service

import (
	"math"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/pkg/common"
)

// MansfieldSeries computes the Mansfield relative strength series of a
// symbol against a benchmark: the Dorsey ratio (close/index x 100)
// normalized by its own moving average, as percentage deviation. Inputs are
// tail-aligned first. Entries where the moving average is undefined are NaN.
func MansfieldSeries(closes, benchmark []float64, window int, maType string) []float64 {
	closes, benchmark = alignTail(closes, benchmark)
	rsd := make([]float64, len(closes))
	for i := range closes {
		if benchmark[i] == 0 {
			rsd[i] = math.NaN()
			continue
		}
		rsd[i] = closes[i] / benchmark[i] * 100
	}

	var ma []float64
	if maType == common.MovingAverageExponential {
		ma = exponentialMovingAverage(rsd, window)
	} else {
		ma = simpleMovingAverage(rsd, window)
	}

	out := make([]float64, len(rsd))
	for i := range rsd {
		if math.IsNaN(ma[i]) || ma[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (rsd[i]/ma[i] - 1) * 100
	}
	return out
}

// blendedReturn computes the weighted multi-horizon return series. A
// horizon longer than the available history shrinks to len-1, matching the
// behavior rankings were historically published with.
func blendedReturn(closes []float64, horizons []int, weights []float64) []float64 {
	out := make([]float64, len(closes))
	for k, h := range horizons {
		periods := h
		if max := len(closes) - 1; periods > max {
			periods = max
		}
		if periods <= 0 {
			continue
		}
		ret := percentChange(closes, periods)
		for i := range out {
			out[i] += weights[k] * ret[i]
		}
	}
	return out
}

// IBDSeries computes the IBD-style relative strength series: the blended
// multi-horizon return of the symbol over that of the benchmark, scaled so
// 100 means matching the benchmark.
func IBDSeries(closes, benchmark []float64, horizons []int, weights []float64) []float64 {
	closes, benchmark = alignTail(closes, benchmark)
	strength := blendedReturn(closes, horizons, weights)
	ref := blendedReturn(benchmark, horizons, weights)

	out := make([]float64, len(strength))
	for i := range strength {
		denom := 1 + ref[i]
		if denom == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (1 + strength[i]) / denom * 100
	}
	return out
}

// latestScore extracts the last finite value of an RS series as a
// StrengthScore, absent when the series never became defined.
func latestScore(series []float64) entity.StrengthScore {
	if len(series) == 0 {
		return entity.AbsentScore
	}
	last := series[len(series)-1]
	if math.IsNaN(last) || math.IsInf(last, 0) {
		return entity.AbsentScore
	}
	return entity.Score(last)
}

// seriesAt returns the series value offset bars before the end, NaN when
// the series is too short or the value is undefined.
func seriesAt(series []float64, offset int) float64 {
	i := len(series) - 1 - offset
	if i < 0 {
		return math.NaN()
	}
	return series[i]
}

// yoyGrowth computes year-over-year growth of a metric series. period is 4
// for quarterly data and 1 for annual. The denominator uses the smaller
// absolute magnitude of the two compared values so sign flips around zero
// earnings stay bounded.
func yoyGrowth(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		prev := values[i-period]
		minAbs := math.Min(math.Abs(values[i]), math.Abs(prev))
		out[i] = (values[i] - prev) / (minAbs + 1e-8)
	}
	return out
}

// rollingMean smooths values over window with a minimum of one observation.
func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		var sum float64
		var n int
		for j := i; j > i-window && j >= 0; j-- {
			if math.IsNaN(values[j]) {
				continue
			}
			sum += values[j]
			n++
		}
		if n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// weightedYoYGrowth blends quarterly (weight 2) and annual (weight 1) YoY
// growth, each smoothed, tail-aligned.
func weightedYoYGrowth(quarterly, annual []float64) []float64 {
	q := rollingMean(yoyGrowth(quarterly, 4), 2)
	a := rollingMean(yoyGrowth(annual, 1), 3)
	q, a = alignTail(q, a)

	out := make([]float64, len(q))
	for i := range q {
		out[i] = (q[i]*2 + a[i]) / 3
	}
	return out
}

// EPSStrength computes the EPS relative strength of one symbol versus the
// universe benchmark: the difference of their weighted YoY growth, x100.
// Absent when the symbol lacks a full year of quarterly history.
func EPSStrength(report *entity.FinancialReport, benchQuarterly, benchAnnual []float64) entity.StrengthScore {
	quarterly := metricValues(report.QuarterlyEPS)
	annual := metricValues(report.AnnualEPS)
	if len(quarterly) < 5 || len(annual) < 2 {
		return entity.AbsentScore
	}

	growth := weightedYoYGrowth(quarterly, annual)
	benchGrowth := weightedYoYGrowth(benchQuarterly, benchAnnual)
	growth, benchGrowth = alignTail(growth, benchGrowth)
	if len(growth) == 0 {
		return entity.AbsentScore
	}

	strength := (growth[len(growth)-1] - benchGrowth[len(benchGrowth)-1]) * 100
	if math.IsNaN(strength) || math.IsInf(strength, 0) {
		return entity.AbsentScore
	}
	return entity.Score(strength)
}

// BenchmarkEPS builds the cap-weighted average EPS series of the universe,
// aligned on the tail so symbols with deeper history do not skew the base.
func BenchmarkEPS(reports map[string]*entity.FinancialReport, pick func(*entity.FinancialReport) []entity.MetricPoint) []float64 {
	shortest := -1
	for _, rep := range reports {
		n := len(pick(rep))
		if n == 0 {
			continue
		}
		if shortest < 0 || n < shortest {
			shortest = n
		}
	}
	if shortest <= 0 {
		return nil
	}

	out := make([]float64, shortest)
	var totalWeight float64
	for _, rep := range reports {
		points := pick(rep)
		if len(points) == 0 {
			continue
		}
		weight := rep.MarketCap
		if weight <= 0 {
			weight = 1
		}
		values := metricValues(points)
		tail := values[len(values)-shortest:]
		for i, v := range tail {
			out[i] += v * weight
		}
		totalWeight += weight
	}
	if totalWeight == 0 {
		return nil
	}
	for i := range out {
		out[i] /= totalWeight
	}
	return out
}

func metricValues(points []entity.MetricPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}
