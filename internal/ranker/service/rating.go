package service

import (
	"math"
	"sort"

	"golang-stock-ranker/internal/entity"
)

// Ratings converts one method's raw scores into 1-99 percentile ratings.
// Absent scores are excluded from the denominator and stay absent. Equal
// scores share the percentile of their averaged rank, so the rating is a
// non-decreasing function of the score. A universe of one rates 99: its
// only member is both min and max.
func Ratings(scores map[string]entity.StrengthScore) map[string]entity.Rating {
	type scored struct {
		symbol string
		value  float64
	}
	present := make([]scored, 0, len(scores))
	for symbol, s := range scores {
		if s.Valid {
			present = append(present, scored{symbol: symbol, value: s.Value})
		}
	}

	ratings := make(map[string]entity.Rating, len(scores))
	for symbol := range scores {
		ratings[symbol] = entity.Rating{}
	}
	if len(present) == 0 {
		return ratings
	}

	sort.Slice(present, func(i, j int) bool {
		if present[i].value != present[j].value {
			return present[i].value < present[j].value
		}
		return present[i].symbol < present[j].symbol
	})

	n := float64(len(present))
	for i := 0; i < len(present); {
		// Find the run of equal values and give each member the averaged rank.
		j := i
		for j < len(present) && present[j].value == present[i].value {
			j++
		}
		avgRank := float64(i+1+j) / 2 // mean of ranks i+1..j
		percentile := avgRank / n
		value := int(math.Ceil(percentile*98)) + 1
		for k := i; k < j; k++ {
			ratings[present[k].symbol] = entity.Rating{Value: value, Valid: true}
		}
		i = j
	}
	return ratings
}

// RatingsFromValues rates a plain value map, treating NaN as absent. Used
// for the historical RS snapshot columns.
func RatingsFromValues(values map[string]float64) map[string]entity.Rating {
	scores := make(map[string]entity.StrengthScore, len(values))
	for symbol, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			scores[symbol] = entity.AbsentScore
			continue
		}
		scores[symbol] = entity.Score(v)
	}
	return Ratings(scores)
}
