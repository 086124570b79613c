package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/internal/ranker/dto"
	"golang-stock-ranker/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMarketData struct {
	calls atomic.Int64
	bars  map[string][]entity.Bar
	errs  map[string]error
}

func (c *countingMarketData) Get(_ context.Context, param dto.GetStockDataParam) ([]entity.Bar, error) {
	c.calls.Add(1)
	if err, ok := c.errs[param.Symbol]; ok {
		return nil, err
	}
	return c.bars[param.Symbol], nil
}

func (c *countingMarketData) GetBatch(ctx context.Context, symbols []string, period, interval string) map[string]BatchResult {
	out := make(map[string]BatchResult, len(symbols))
	for _, s := range symbols {
		bars, err := c.Get(ctx, dto.GetStockDataParam{Symbol: s, Period: period, Interval: interval})
		out[s] = BatchResult{Bars: bars, Err: err}
	}
	return out
}

func TestCachedMarketDataRepository(t *testing.T) {
	bars := []entity.Bar{{Close: 100}}

	t.Run("second get hits the cache", func(t *testing.T) {
		next := &countingMarketData{bars: map[string][]entity.Bar{"AAPL": bars}}
		repo := NewCachedMarketDataRepository(next, cache.NewStore(cache.Config{TTL: time.Minute}))
		param := dto.GetStockDataParam{Symbol: "AAPL", Period: "2y", Interval: "1d"}

		first, err := repo.Get(context.Background(), param)
		require.NoError(t, err)
		second, err := repo.Get(context.Background(), param)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int64(1), next.calls.Load())
	})

	t.Run("different params miss", func(t *testing.T) {
		next := &countingMarketData{bars: map[string][]entity.Bar{"AAPL": bars}}
		repo := NewCachedMarketDataRepository(next, cache.NewStore(cache.Config{TTL: time.Minute}))

		_, _ = repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "AAPL", Period: "2y", Interval: "1d"})
		_, _ = repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "AAPL", Period: "1y", Interval: "1d"})
		assert.Equal(t, int64(2), next.calls.Load())
	})

	t.Run("failures are not cached", func(t *testing.T) {
		next := &countingMarketData{errs: map[string]error{"BAD": errors.New("boom")}}
		repo := NewCachedMarketDataRepository(next, cache.NewStore(cache.Config{TTL: time.Minute}))
		param := dto.GetStockDataParam{Symbol: "BAD"}

		_, err := repo.Get(context.Background(), param)
		require.Error(t, err)
		_, err = repo.Get(context.Background(), param)
		require.Error(t, err)
		assert.Equal(t, int64(2), next.calls.Load())
	})

	t.Run("batch fetches only the misses", func(t *testing.T) {
		next := &countingMarketData{bars: map[string][]entity.Bar{"AAPL": bars, "MSFT": bars}}
		repo := NewCachedMarketDataRepository(next, cache.NewStore(cache.Config{TTL: time.Minute}))

		_, err := repo.Get(context.Background(), dto.GetStockDataParam{Symbol: "AAPL", Period: "2y", Interval: "1d"})
		require.NoError(t, err)

		results := repo.GetBatch(context.Background(), []string{"AAPL", "MSFT"}, "2y", "1d")
		require.Len(t, results, 2)
		assert.NoError(t, results["AAPL"].Err)
		assert.NoError(t, results["MSFT"].Err)
		assert.Equal(t, int64(2), next.calls.Load()) // AAPL served from cache
	})
}

type countingFundamentals struct {
	calls atomic.Int64
}

func (c *countingFundamentals) GetFinancials(_ context.Context, symbol string) (*entity.FinancialReport, error) {
	c.calls.Add(1)
	return &entity.FinancialReport{Symbol: symbol}, nil
}

func (c *countingFundamentals) GetInfo(_ context.Context, symbol string) (*entity.SymbolInfo, error) {
	c.calls.Add(1)
	return &entity.SymbolInfo{Symbol: symbol}, nil
}

func TestCachedFundamentalsRepository(t *testing.T) {
	next := &countingFundamentals{}
	repo := NewCachedFundamentalsRepository(next, cache.NewStore(cache.Config{TTL: time.Minute}))

	_, err := repo.GetFinancials(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = repo.GetFinancials(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next.calls.Load())

	_, err = repo.GetInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = repo.GetInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.calls.Load()) // one financials + one info fetch
}
