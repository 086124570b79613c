package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/internal/ranker/config"
	"golang-stock-ranker/internal/ranker/dto"
	"golang-stock-ranker/pkg/logger"

	"golang.org/x/time/rate"
)

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewYahooFinanceRepository creates a MarketDataRepository backed by the
// Yahoo Finance chart API.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Yahoo.MaxRequestPerMinute)
	return &yahooFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Yahoo.TimeoutSeconds) * time.Second,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *yahooFinanceRepository) Get(ctx context.Context, param dto.GetStockDataParam) ([]entity.Bar, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", r.cfg.Yahoo.BaseURL, url.PathEscape(param.Symbol))
	query := url.Values{}
	query.Set("range", param.Period)
	query.Set("interval", param.Interval)
	query.Set("events", "div,splits")

	body, err := r.sendRequest(ctx, endpoint+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrSourceUnavailable, param.Symbol, err)
	}

	var response dto.YahooChartResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %s: decode chart response: %v", entity.ErrSourceUnavailable, param.Symbol, err)
	}
	if response.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", entity.ErrSourceUnavailable, param.Symbol, response.Chart.Error.Description)
	}
	if len(response.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s: empty chart result", entity.ErrSourceUnavailable, param.Symbol)
	}

	bars := toBars(response.Chart.Result[0])
	r.log.DebugContext(ctx, "Fetched price history",
		logger.StringField("symbol", param.Symbol),
		logger.IntField("bars", len(bars)))
	return bars, nil
}

// GetBatch fetches all symbols through a bounded worker pool. Each failed
// symbol carries its own error; the batch itself always completes.
func (r *yahooFinanceRepository) GetBatch(ctx context.Context, symbols []string, period, interval string) map[string]BatchResult {
	workers := r.cfg.Ranking.Workers
	if workers < 1 {
		workers = 1
	}

	type slot struct {
		symbol string
		result BatchResult
	}

	jobs := make(chan string)
	out := make(chan slot)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				bars, err := r.Get(ctx, dto.GetStockDataParam{
					Symbol:   symbol,
					Period:   period,
					Interval: interval,
				})
				out <- slot{symbol: symbol, result: BatchResult{Bars: bars, Err: err}}
			}
		}()
	}

	go func() {
		for _, s := range symbols {
			jobs <- s
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	results := make(map[string]BatchResult, len(symbols))
	for s := range out {
		results[s.symbol] = s.result
	}
	return results
}

func (r *yahooFinanceRepository) sendRequest(ctx context.Context, requestURL string) ([]byte, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stock-ranker/1.0)")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

// toBars converts a chart result to bars, preferring the adjusted close and
// skipping rows Yahoo left null.
func toBars(result dto.YahooChartResult) []entity.Bar {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]

	var adjusted []float64
	if len(result.Indicators.AdjClose) > 0 {
		adjusted = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]entity.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		closePrice := quote.Close[i]
		if i < len(adjusted) && adjusted[i] != 0 {
			closePrice = adjusted[i]
		}
		bar := entity.Bar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: closePrice,
		}
		if i < len(quote.Open) {
			bar.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			bar.High = quote.High[i]
		}
		if i < len(quote.Low) {
			bar.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			bar.Volume = quote.Volume[i]
		}
		bars = append(bars, bar)
	}
	return bars
}
