package repository

import (
	"context"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/internal/ranker/dto"
)

// BatchResult carries one symbol's fetch outcome inside a batch. A failed
// symbol holds its error and never aborts the batch.
type BatchResult struct {
	Bars []entity.Bar
	Err  error
}

// MarketDataRepository fetches historical OHLCV series.
type MarketDataRepository interface {
	Get(ctx context.Context, param dto.GetStockDataParam) ([]entity.Bar, error)
	GetBatch(ctx context.Context, symbols []string, period, interval string) map[string]BatchResult
}

// FundamentalsRepository fetches EPS history and benchmark weights.
type FundamentalsRepository interface {
	GetFinancials(ctx context.Context, symbol string) (*entity.FinancialReport, error)
	GetInfo(ctx context.Context, symbol string) (*entity.SymbolInfo, error)
}

// TickerUniverseRepository resolves a universe source code to its symbols.
type TickerUniverseRepository interface {
	GetTickers(ctx context.Context, source string) ([]string, error)
}
