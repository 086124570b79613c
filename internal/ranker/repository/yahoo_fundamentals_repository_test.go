package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-stock-ranker/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteSummaryBody = `{
  "quoteSummary": {
    "result": [{
      "assetProfile": {"sector": "Technology", "industry": "Semiconductors"},
      "price": {"longName": "NVIDIA Corporation", "marketCap": {"raw": 3.1e12, "fmt": "3.1T"}},
      "earnings": {
        "financialsChart": {
          "quarterly": [
            {"date": "1Q2024", "earnings": {"raw": 5.98}},
            {"date": "2Q2024", "earnings": {"raw": 6.12}}
          ],
          "yearly": [
            {"date": 2023, "earnings": {"raw": 11.93}},
            {"date": 2024, "earnings": {"raw": 24.30}}
          ]
        }
      }
    }],
    "error": null
  }
}`

func TestYahooFundamentalsRepository(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v10/finance/quoteSummary/NOPE" {
			fmt.Fprint(w, `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found"}}}`)
			return
		}
		fmt.Fprint(w, quoteSummaryBody)
	}))
	defer server.Close()

	repo := NewYahooFundamentalsRepository(chartConfig(server.URL), testLogger(t))

	t.Run("financials carry EPS history and market cap", func(t *testing.T) {
		report, err := repo.GetFinancials(context.Background(), "NVDA")
		require.NoError(t, err)

		assert.Equal(t, "NVDA", report.Symbol)
		assert.Equal(t, 3.1e12, report.MarketCap)
		require.Len(t, report.QuarterlyEPS, 2)
		assert.Equal(t, "1Q2024", report.QuarterlyEPS[0].Period)
		assert.Equal(t, 5.98, report.QuarterlyEPS[0].Value)
		require.Len(t, report.AnnualEPS, 2)
		assert.Equal(t, 24.30, report.AnnualEPS[1].Value)
	})

	t.Run("info carries name and profile", func(t *testing.T) {
		info, err := repo.GetInfo(context.Background(), "NVDA")
		require.NoError(t, err)

		assert.Equal(t, "NVIDIA Corporation", info.Name)
		assert.Equal(t, "Technology", info.Sector)
		assert.Equal(t, "Semiconductors", info.Industry)
	})

	t.Run("api error maps to source unavailable", func(t *testing.T) {
		_, err := repo.GetFinancials(context.Background(), "NOPE")
		require.ErrorIs(t, err, entity.ErrSourceUnavailable)
		assert.Contains(t, err.Error(), "Quote not found")
	})
}
