package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/internal/ranker/config"
	"golang-stock-ranker/internal/ranker/dto"
	"golang-stock-ranker/pkg/logger"

	"golang.org/x/time/rate"
)

type yahooFundamentalsRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewYahooFundamentalsRepository creates a FundamentalsRepository backed by
// the Yahoo Finance quoteSummary API.
func NewYahooFundamentalsRepository(cfg *config.Config, log *logger.Logger) FundamentalsRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Yahoo.MaxRequestPerMinute)
	return &yahooFundamentalsRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Yahoo.TimeoutSeconds) * time.Second,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *yahooFundamentalsRepository) GetFinancials(ctx context.Context, symbol string) (*entity.FinancialReport, error) {
	result, err := r.quoteSummary(ctx, symbol, "earnings,price")
	if err != nil {
		return nil, err
	}

	report := &entity.FinancialReport{Symbol: symbol}
	if result.Price != nil {
		report.MarketCap = result.Price.MarketCap.Raw
	}
	if result.Earnings != nil {
		for _, p := range result.Earnings.FinancialsChart.Quarterly {
			report.QuarterlyEPS = append(report.QuarterlyEPS, entity.MetricPoint{
				Period: fmt.Sprint(p.Date),
				Value:  p.Earnings.Raw,
			})
		}
		for _, p := range result.Earnings.FinancialsChart.Yearly {
			report.AnnualEPS = append(report.AnnualEPS, entity.MetricPoint{
				Period: fmt.Sprint(p.Date),
				Value:  p.Earnings.Raw,
			})
		}
	}
	return report, nil
}

func (r *yahooFundamentalsRepository) GetInfo(ctx context.Context, symbol string) (*entity.SymbolInfo, error) {
	result, err := r.quoteSummary(ctx, symbol, "assetProfile,price")
	if err != nil {
		return nil, err
	}

	info := &entity.SymbolInfo{Symbol: symbol}
	if result.Price != nil {
		info.Name = result.Price.LongName
	}
	if result.AssetProfile != nil {
		info.Sector = result.AssetProfile.Sector
		info.Industry = result.AssetProfile.Industry
	}
	return info, nil
}

func (r *yahooFundamentalsRepository) quoteSummary(ctx context.Context, symbol, modules string) (*dto.YahooQuoteSummaryResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s", r.cfg.Yahoo.BaseURL, url.PathEscape(symbol))
	query := url.Values{}
	query.Set("modules", modules)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stock-ranker/1.0)")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrSourceUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrSourceUnavailable, symbol, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", entity.ErrSourceUnavailable, symbol, resp.StatusCode)
	}

	var response dto.YahooQuoteSummaryResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %s: decode quote summary: %v", entity.ErrSourceUnavailable, symbol, err)
	}
	if response.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", entity.ErrSourceUnavailable, symbol, response.QuoteSummary.Error.Description)
	}
	if len(response.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s: empty quote summary", entity.ErrSourceUnavailable, symbol)
	}
	return &response.QuoteSummary.Result[0], nil
}
