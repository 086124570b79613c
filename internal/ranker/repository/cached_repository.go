package repository

import (
	"context"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/internal/ranker/dto"
	"golang-stock-ranker/pkg/cache"
)

// cachedMarketDataRepository memoizes chart fetches keyed by
// (symbol, period, interval). A key is only ever written with a complete
// bar slice, so readers cannot observe partial entries.
type cachedMarketDataRepository struct {
	next  MarketDataRepository
	store *cache.Store
}

// NewCachedMarketDataRepository wraps a MarketDataRepository with a TTL
// cache. Failures are not cached.
func NewCachedMarketDataRepository(next MarketDataRepository, store *cache.Store) MarketDataRepository {
	return &cachedMarketDataRepository{next: next, store: store}
}

func (r *cachedMarketDataRepository) Get(ctx context.Context, param dto.GetStockDataParam) ([]entity.Bar, error) {
	key := cache.Key("chart", param.Symbol, param.Period, param.Interval)
	if v, ok := r.store.Get(key); ok {
		return v.([]entity.Bar), nil
	}
	bars, err := r.next.Get(ctx, param)
	if err != nil {
		return nil, err
	}
	r.store.Set(key, bars)
	return bars, nil
}

func (r *cachedMarketDataRepository) GetBatch(ctx context.Context, symbols []string, period, interval string) map[string]BatchResult {
	results := make(map[string]BatchResult, len(symbols))
	var misses []string
	for _, symbol := range symbols {
		key := cache.Key("chart", symbol, period, interval)
		if v, ok := r.store.Get(key); ok {
			results[symbol] = BatchResult{Bars: v.([]entity.Bar)}
		} else {
			misses = append(misses, symbol)
		}
	}
	if len(misses) == 0 {
		return results
	}
	fetched := r.next.GetBatch(ctx, misses, period, interval)
	for symbol, res := range fetched {
		if res.Err == nil {
			r.store.Set(cache.Key("chart", symbol, period, interval), res.Bars)
		}
		results[symbol] = res
	}
	return results
}

// cachedFundamentalsRepository memoizes fundamentals and info lookups.
type cachedFundamentalsRepository struct {
	next  FundamentalsRepository
	store *cache.Store
}

// NewCachedFundamentalsRepository wraps a FundamentalsRepository with a TTL
// cache.
func NewCachedFundamentalsRepository(next FundamentalsRepository, store *cache.Store) FundamentalsRepository {
	return &cachedFundamentalsRepository{next: next, store: store}
}

func (r *cachedFundamentalsRepository) GetFinancials(ctx context.Context, symbol string) (*entity.FinancialReport, error) {
	key := cache.Key("financials", symbol)
	if v, ok := r.store.Get(key); ok {
		return v.(*entity.FinancialReport), nil
	}
	report, err := r.next.GetFinancials(ctx, symbol)
	if err != nil {
		return nil, err
	}
	r.store.Set(key, report)
	return report, nil
}

func (r *cachedFundamentalsRepository) GetInfo(ctx context.Context, symbol string) (*entity.SymbolInfo, error) {
	key := cache.Key("info", symbol)
	if v, ok := r.store.Get(key); ok {
		return v.(*entity.SymbolInfo), nil
	}
	info, err := r.next.GetInfo(ctx, symbol)
	if err != nil {
		return nil, err
	}
	r.store.Set(key, info)
	return info, nil
}
