package dto

import (
	"fmt"
	"math"

	"golang-stock-ranker/internal/entity"
)

// NewRankingResponse flattens a ranking table for JSON output. NaN values
// and absent ratings become nulls.
func NewRankingResponse(table *entity.RankingTable, maWindows, vmaWindows []int) RankingResponse {
	rows := make([]RankingRowView, 0, len(table.Rows))
	for i, row := range table.Rows {
		view := RankingRowView{
			Rank:     i + 1,
			Symbol:   row.Symbol,
			Name:     row.Name,
			Sector:   row.Sector,
			Industry: row.Industry,
			Price:    row.Price,
			RS:       floatPtr(row.RS),
			RS1M:     floatPtr(row.RS1M),
			RS3M:     floatPtr(row.RS3M),
			RS6M:     floatPtr(row.RS6M),
			Ratings:  make(map[string]*int, len(table.Methods)),
			Rating1M: ratingPtr(row.Rating1M),
			Rating3M: ratingPtr(row.Rating3M),
			Rating6M: ratingPtr(row.Rating6M),
			WeeksUp:  row.WeeksUp,
		}
		for _, m := range table.Methods {
			view.Ratings[m] = ratingPtr(row.Ratings[m])
		}
		view.PriceMARatio = ratioViews("MA", maWindows, row.PriceMARatio)
		view.VolumeVMRatio = ratioViews("VMA", vmaWindows, row.VolumeVMRatio)
		rows = append(rows, view)
	}

	return RankingResponse{
		SnapshotID: table.SnapshotID.String(),
		AsOf:       table.AsOf.Format("2006-01-02"),
		LeadMethod: table.LeadMethod,
		Rows:       rows,
		Excluded:   len(table.Exclusions),
	}
}

// NewExclusionsResponse maps the exclusion report.
func NewExclusionsResponse(table *entity.RankingTable) ExclusionsResponse {
	out := ExclusionsResponse{SnapshotID: table.SnapshotID.String()}
	for _, e := range table.Exclusions {
		out.Exclusions = append(out.Exclusions, ExclusionView{Symbol: e.Symbol, Reason: e.Reason})
	}
	return out
}

func ratingPtr(r entity.Rating) *int {
	if !r.Valid {
		return nil
	}
	v := r.Value
	return &v
}

func ratioViews(prefix string, windows []int, ratios map[int]float64) map[string]*float64 {
	out := make(map[string]*float64, len(windows))
	for _, w := range windows {
		key := fmt.Sprintf("%s%d", prefix, w)
		v, ok := ratios[w]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			out[key] = nil
			continue
		}
		val := v
		out[key] = &val
	}
	return out
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
