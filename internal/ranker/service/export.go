package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/internal/ranker/dto"
)

// WriteCSV renders the table in column order: identity, price, lead RS
// snapshots, per-method ratings, historical ratings, ratio columns, weeks
// up. Absent values render as empty cells, never zero.
func WriteCSV(w io.Writer, table *entity.RankingTable, maWindows, vmaWindows []int) error {
	cw := csv.NewWriter(w)

	header := []string{"Rank", "Symbol", "Name", "Sector", "Industry", "Price",
		"RS", "RS 1M", "RS 3M", "RS 6M"}
	for _, m := range table.Methods {
		header = append(header, fmt.Sprintf("Rating (%s)", m))
	}
	header = append(header, "Rating 1M", "Rating 3M", "Rating 6M")
	for _, win := range maWindows {
		header = append(header, fmt.Sprintf("Price/MA%d", win))
	}
	for _, win := range vmaWindows {
		header = append(header, fmt.Sprintf("Volume/VMA%d", win))
	}
	header = append(header, "Weeks Up")
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		record := []string{
			strconv.Itoa(i + 1),
			row.Symbol,
			row.Name,
			row.Sector,
			row.Industry,
			formatFloat(row.Price),
			formatFloat(row.RS),
			formatFloat(row.RS1M),
			formatFloat(row.RS3M),
			formatFloat(row.RS6M),
		}
		for _, m := range table.Methods {
			record = append(record, formatRating(row.Ratings[m]))
		}
		record = append(record,
			formatRating(row.Rating1M),
			formatRating(row.Rating3M),
			formatRating(row.Rating6M),
		)
		for _, win := range maWindows {
			record = append(record, formatFloat(row.PriceMARatio[win]))
		}
		for _, win := range vmaWindows {
			record = append(record, formatFloat(row.VolumeVMRatio[win]))
		}
		record = append(record, strconv.Itoa(row.WeeksUp))
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON renders the table as indented JSON, with absent values as
// nulls.
func WriteJSON(w io.Writer, table *entity.RankingTable, maWindows, vmaWindows []int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dto.NewRankingResponse(table, maWindows, vmaWindows))
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatRating(r entity.Rating) string {
	if !r.Valid {
		return ""
	}
	return strconv.Itoa(r.Value)
}
