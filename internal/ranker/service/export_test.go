package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"testing"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportTable() *entity.RankingTable {
	return &entity.RankingTable{
		AsOf:       day(10),
		LeadMethod: common.MethodIBD,
		Methods:    []string{common.MethodIBD},
		Rows: []entity.RankingRow{
			{
				Symbol: "AAA",
				Name:   "Alpha Corp",
				Price:  123.456,
				RS:     101.5,
				RS1M:   math.NaN(), // history too short
				Ratings: map[string]entity.Rating{
					common.MethodIBD: {Value: 99, Valid: true},
				},
				PriceMARatio:  map[int]float64{50: 1.05},
				VolumeVMRatio: map[int]float64{50: math.NaN()},
				WeeksUp:       3,
			},
			{
				Symbol:  "BBB",
				Price:   10,
				RS:      math.NaN(),
				Ratings: map[string]entity.Rating{common.MethodIBD: {}},
			},
		},
		Exclusions: []entity.Exclusion{{Symbol: "CCC", Reason: "data insufficient: 3 bars < min 10"}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportTable(), []int{50}, []int{50}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, []string{"Rank", "Symbol", "Name", "Sector", "Industry", "Price",
		"RS", "RS 1M", "RS 3M", "RS 6M", "Rating (ibd)", "Rating 1M", "Rating 3M",
		"Rating 6M", "Price/MA50", "Volume/VMA50", "Weeks Up"}, header)

	byName := func(record []string, column string) string {
		for i, h := range header {
			if h == column {
				return record[i]
			}
		}
		t.Fatalf("no column %q", column)
		return ""
	}

	first := records[1]
	assert.Equal(t, "1", byName(first, "Rank"))
	assert.Equal(t, "AAA", byName(first, "Symbol"))
	assert.Equal(t, "123.46", byName(first, "Price"))
	assert.Equal(t, "101.50", byName(first, "RS"))
	assert.Equal(t, "", byName(first, "RS 1M")) // absent, not zero
	assert.Equal(t, "99", byName(first, "Rating (ibd)"))
	assert.Equal(t, "1.05", byName(first, "Price/MA50"))
	assert.Equal(t, "", byName(first, "Volume/VMA50"))
	assert.Equal(t, "3", byName(first, "Weeks Up"))

	second := records[2]
	assert.Equal(t, "2", byName(second, "Rank"))
	assert.Equal(t, "", byName(second, "RS"))
	assert.Equal(t, "", byName(second, "Rating (ibd)"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, exportTable(), []int{50}, []int{50}))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))

	assert.Equal(t, "2024-01-10", payload["as_of"])
	assert.Equal(t, float64(1), payload["excluded"])

	rows, ok := payload["rows"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 2)

	first := rows[0].(map[string]any)
	assert.Equal(t, "AAA", first["symbol"])
	assert.Equal(t, 101.5, first["rs"])
	assert.Nil(t, first["rs_1m"]) // absent snapshot serializes as null
	ratings := first["ratings"].(map[string]any)
	assert.Equal(t, float64(99), ratings["ibd"])

	second := rows[1].(map[string]any)
	assert.Nil(t, second["rs"]) // absent, never zero
	secondRatings := second["ratings"].(map[string]any)
	assert.Nil(t, secondRatings["ibd"]) // unrated serializes as null
	volumes := second["volume_vma_ratio"].(map[string]any)
	assert.Nil(t, volumes["VMA50"])
}
