package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/pkg/common"
	"golang-stock-ranker/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

// soxTickers is maintained by hand; the PHLX Semiconductor index has no
// machine-readable constituent list.
var soxTickers = []string{
	"AMD", "ADI", "AMAT", "ASML", "AZTA", "AVGO", "COHR", "ENTG", "GFS",
	"INTC", "IPGP", "KLAC", "LRCX", "LSCC", "MRVL", "MCHP", "MU", "MPWR",
	"NOVT", "NVDA", "NXPI", "ON", "QRVO", "QCOM", "SWKS", "SYNA", "TSM",
	"TER", "TXN", "WOLF",
}

type tickerUniverseRepository struct {
	log        *logger.Logger
	httpClient *http.Client
}

// NewTickerUniverseRepository creates a TickerUniverseRepository that
// resolves US index constituents from Wikipedia tables and Taiwan exchange
// listings from the TWSE/TPEx open APIs. Compound sources combine with '+',
// e.g. "SPX+NDX".
func NewTickerUniverseRepository(log *logger.Logger) TickerUniverseRepository {
	return &tickerUniverseRepository{
		log: log,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (r *tickerUniverseRepository) GetTickers(ctx context.Context, source string) ([]string, error) {
	parts := strings.Split(strings.ToUpper(source), "+")
	seen := make(map[string]bool)
	var tickers []string
	for _, part := range parts {
		got, err := r.getSingle(ctx, part)
		if err != nil {
			return nil, err
		}
		for _, t := range got {
			if !seen[t] {
				seen[t] = true
				tickers = append(tickers, t)
			}
		}
	}
	// Stable order regardless of which source contributed a symbol first.
	sort.Strings(tickers)
	return tickers, nil
}

func (r *tickerUniverseRepository) getSingle(ctx context.Context, source string) ([]string, error) {
	switch source {
	case common.UniverseSPX:
		return r.wikipediaColumn(ctx,
			"https://en.wikipedia.org/wiki/List_of_S%26P_500_companies", "Symbol")
	case common.UniverseNDX:
		return r.wikipediaColumn(ctx,
			"https://en.wikipedia.org/wiki/Nasdaq-100", "Ticker")
	case common.UniverseDJIA:
		return r.wikipediaColumn(ctx,
			"https://en.wikipedia.org/wiki/Dow_Jones_Industrial_Average", "Symbol")
	case common.UniverseSOX:
		return append([]string(nil), soxTickers...), nil
	case common.UniverseTWSE:
		return r.taiwanCodes(ctx,
			"https://openapi.twse.com.tw/v1/exchangeReport/STOCK_DAY_ALL", "Code", ".TW")
	case common.UniverseTPEX:
		return r.taiwanCodes(ctx,
			"https://www.tpex.org.tw/openapi/v1/tpex_daily_market_value", "SecuritiesCompanyCode", ".TWO")
	case common.UniverseESB:
		return r.taiwanCodes(ctx,
			"https://www.tpex.org.tw/openapi/v1/tpex_esb_capitals_rank", "SecuritiesCompanyCode", ".TWO")
	default:
		return nil, fmt.Errorf("%w: unknown universe source %q", entity.ErrConfigurationInvalid, source)
	}
}

// wikipediaColumn extracts one column of the constituents table on a
// Wikipedia index page.
func (r *tickerUniverseRepository) wikipediaColumn(ctx context.Context, pageURL, header string) ([]string, error) {
	body, err := r.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", entity.ErrSourceUnavailable, pageURL, err)
	}

	var tickers []string
	doc.Find("table.wikitable").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		col := -1
		table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
			if strings.EqualFold(strings.TrimSpace(th.Text()), header) {
				col = i
			}
		})
		if col < 0 {
			return true // try the next table
		}
		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return
			}
			cell := row.Find("td").Eq(col)
			ticker := strings.TrimSpace(cell.Text())
			if ticker != "" {
				// Yahoo uses dashes where exchanges use dots (BRK.B -> BRK-B).
				tickers = append(tickers, strings.ReplaceAll(ticker, ".", "-"))
			}
		})
		return false
	})

	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no constituents table with column %q at %s", entity.ErrSourceUnavailable, header, pageURL)
	}
	r.log.DebugContext(ctx, "Fetched index constituents",
		logger.StringField("url", pageURL),
		logger.IntField("tickers", len(tickers)))
	return tickers, nil
}

// taiwanCodes reads a code column from a TWSE/TPEx open API response and
// appends the Yahoo market suffix.
func (r *tickerUniverseRepository) taiwanCodes(ctx context.Context, apiURL, field, suffix string) ([]string, error) {
	body, err := r.fetch(ctx, apiURL)
	if err != nil {
		return nil, err
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", entity.ErrSourceUnavailable, apiURL, err)
	}

	var tickers []string
	for _, row := range rows {
		code, ok := row[field].(string)
		if !ok || code == "" {
			continue
		}
		tickers = append(tickers, code+suffix)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no codes in field %q at %s", entity.ErrSourceUnavailable, field, apiURL)
	}
	return tickers, nil
}

func (r *tickerUniverseRepository) fetch(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stock-ranker/1.0)")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrSourceUnavailable, requestURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", entity.ErrSourceUnavailable, requestURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
