package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/internal/ranker/config"
	"golang-stock-ranker/internal/ranker/dto"
	"golang-stock-ranker/internal/ranker/repository"
	"golang-stock-ranker/pkg/common"
	"golang-stock-ranker/pkg/logger"
	"golang-stock-ranker/pkg/utils"

	"github.com/google/uuid"
)

// RankingService runs the full pipeline: resolve universe, fetch, normalize,
// score, rate and assemble. The latest table is kept in memory for the API.
type RankingService interface {
	Run(ctx context.Context) (*entity.RankingTable, error)
	Latest() (*entity.RankingTable, error)
}

type rankingService struct {
	cfg          *config.Config
	log          *logger.Logger
	marketData   repository.MarketDataRepository
	fundamentals repository.FundamentalsRepository
	universe     repository.TickerUniverseRepository

	mu     sync.RWMutex
	latest *entity.RankingTable
}

// NewRankingService creates the ranking orchestrator.
func NewRankingService(
	cfg *config.Config,
	log *logger.Logger,
	marketData repository.MarketDataRepository,
	fundamentals repository.FundamentalsRepository,
	universe repository.TickerUniverseRepository,
) RankingService {
	return &rankingService{
		cfg:          cfg,
		log:          log,
		marketData:   marketData,
		fundamentals: fundamentals,
		universe:     universe,
	}
}

// Latest returns the most recently published table.
func (s *rankingService) Latest() (*entity.RankingTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, entity.ErrNoTable
	}
	return s.latest, nil
}

// Run executes one full ranking pass. Configuration is validated before any
// fetch; per-symbol fetch or history problems become exclusions, never run
// failures. Only a benchmark outage or an unresolvable universe aborts.
func (s *rankingService) Run(ctx context.Context) (*entity.RankingTable, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	r := &s.cfg.Ranking

	started := time.Now()
	symbols, err := s.resolveUniverse(ctx)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "Starting ranking run",
		logger.IntField("universe", len(symbols)),
		logger.StringField("lead_method", r.LeadMethod))

	benchmarkBars, err := s.marketData.Get(ctx, dto.GetStockDataParam{
		Symbol:   r.Benchmark,
		Period:   r.Period,
		Interval: r.Interval,
	})
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", r.Benchmark, err)
	}

	batch := s.marketData.GetBatch(ctx, symbols, r.Period, r.Interval)
	raw := make(map[string][]entity.Bar, len(batch))
	var exclusions []entity.Exclusion
	for symbol, res := range batch {
		if res.Err != nil {
			exclusions = append(exclusions, entity.Exclusion{
				Symbol: symbol,
				Reason: fmt.Sprintf("source unavailable: %v", res.Err),
			})
			continue
		}
		raw[symbol] = res.Bars
	}

	asOf := s.asOfDate()
	if !asOf.IsZero() {
		for symbol, bars := range raw {
			raw[symbol] = truncateAfter(bars, asOf)
		}
		benchmarkBars = truncateAfter(benchmarkBars, asOf)
	}

	normalizer := NewNormalizer(r.MinBars)
	series, insufficient := normalizer.Normalize(raw)
	exclusions = append(exclusions, insufficient...)
	sort.Slice(exclusions, func(i, j int) bool { return exclusions[i].Symbol < exclusions[j].Symbol })

	benchBars := dedupeSort(benchmarkBars)
	if asOf.IsZero() && len(benchBars) > 0 {
		asOf = benchBars[len(benchBars)-1].Date
	}

	results := s.scoreSymbols(series, benchBars)

	if containsMethod(r.Methods, common.MethodEPS) {
		s.scoreEPS(ctx, results)
	}
	s.attachInfo(ctx, results)

	ratings := make(map[string]map[string]entity.Rating, len(r.Methods))
	for _, method := range r.Methods {
		scores := make(map[string]entity.StrengthScore, len(results))
		for symbol, res := range results {
			scores[symbol] = res.Scores[method]
		}
		ratings[method] = Ratings(scores)
	}

	historical := map[string]map[string]entity.Rating{
		"1m": historicalRatings(results, func(r *SymbolResult) float64 { return r.RS1M }),
		"3m": historicalRatings(results, func(r *SymbolResult) float64 { return r.RS3M }),
		"6m": historicalRatings(results, func(r *SymbolResult) float64 { return r.RS6M }),
	}

	table := AssembleTable(results, ratings, historical, r.LeadMethod, r.Methods,
		r.MAWindows, r.VMAWindows, asOf, exclusions)
	table.SnapshotID = snapshotID(asOf, r.LeadMethod, symbols)

	s.mu.Lock()
	s.latest = table
	s.mu.Unlock()

	s.log.InfoContext(ctx, "Ranking run finished",
		logger.IntField("rows", len(table.Rows)),
		logger.IntField("excluded", len(table.Exclusions)),
		logger.Field("elapsed", time.Since(started)))
	return table, nil
}

func (s *rankingService) resolveUniverse(ctx context.Context) ([]string, error) {
	u := s.cfg.Ranking.Universe
	if len(u.Symbols) > 0 {
		out := append([]string(nil), u.Symbols...)
		sort.Strings(out)
		return out, nil
	}
	return s.universe.GetTickers(ctx, u.Source)
}

func (s *rankingService) asOfDate() time.Time {
	if s.cfg.Ranking.AsOfDate == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s.cfg.Ranking.AsOfDate)
	if err != nil {
		// Validate() has already run; an unparseable date is ignored rather
		// than failing a run that passed validation.
		s.log.Warn("Ignoring unparseable as_of_date", logger.StringField("as_of_date", s.cfg.Ranking.AsOfDate))
		return time.Time{}
	}
	return t.UTC()
}

// scoreSymbols fans the price-based methods out across workers. Result
// slots are allocated up front; each worker writes only its own symbol's
// slot, so there is no shared mutable state.
func (s *rankingService) scoreSymbols(series map[string]*entity.SymbolSeries, benchmark []entity.Bar) map[string]*SymbolResult {
	r := &s.cfg.Ranking

	results := make(map[string]*SymbolResult, len(series))
	order := make([]string, 0, len(series))
	for symbol, sym := range series {
		results[symbol] = &SymbolResult{
			Series: sym,
			Scores: make(map[string]entity.StrengthScore, len(r.Methods)),
			RS:     math.NaN(),
			RS1M:   math.NaN(),
			RS3M:   math.NaN(),
			RS6M:   math.NaN(),
		}
		order = append(order, symbol)
	}

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			for symbol := range jobs {
				s.scoreOne(results[symbol], benchmark)
			}
		})
	}
	for _, symbol := range order {
		jobs <- symbol
	}
	close(jobs)
	wg.Wait()

	return results
}

// scoreOne computes one symbol's derived series and price-based scores.
// The benchmark is joined on the symbol's own bar dates so an unfilled gap
// never shifts the comparison.
func (s *rankingService) scoreOne(res *SymbolResult, benchBars []entity.Bar) {
	r := &s.cfg.Ranking
	closes := res.Series.Closes()
	benchmark := alignedCloses(res.Series.Bars, benchBars)
	res.Derived = BuildDerived(res.Series, r.MAWindows, r.VMAWindows)

	var leadSeries []float64
	for _, method := range r.Methods {
		switch method {
		case common.MethodMansfield:
			rsm := MansfieldSeries(closes, benchmark, r.Mansfield.Window, r.Mansfield.MAType)
			res.Scores[method] = latestScore(rsm)
			if method == r.LeadMethod {
				leadSeries = rsm
			}
		case common.MethodIBD:
			rs := IBDSeries(closes, benchmark, r.IBD.Horizons, r.IBD.Weights)
			res.Scores[method] = latestScore(rs)
			if method == r.LeadMethod {
				leadSeries = rs
			}
		}
	}

	if leadSeries != nil {
		res.RS = seriesAt(leadSeries, 0)
		res.RS1M = seriesAt(leadSeries, common.TradingDaysPerMonth)
		res.RS3M = seriesAt(leadSeries, common.TradingDaysPerQuarter)
		res.RS6M = seriesAt(leadSeries, 2*common.TradingDaysPerQuarter)
	}
}

// scoreEPS fetches fundamentals for the surviving symbols, builds the
// cap-weighted benchmark EPS and scores each symbol against it. A symbol
// whose fundamentals cannot be fetched gets an absent EPS score; it stays
// in the run for the other methods.
func (s *rankingService) scoreEPS(ctx context.Context, results map[string]*SymbolResult) {
	reports := make(map[string]*entity.FinancialReport, len(results))
	var mu sync.Mutex

	s.forEachSymbol(results, func(symbol string) {
		report, err := s.fundamentals.GetFinancials(ctx, symbol)
		if err != nil {
			s.log.WarnContext(ctx, "No fundamentals for symbol",
				logger.StringField("symbol", symbol), logger.ErrorField(err))
			return
		}
		mu.Lock()
		reports[symbol] = report
		mu.Unlock()
	})

	benchQuarterly := BenchmarkEPS(reports, func(r *entity.FinancialReport) []entity.MetricPoint { return r.QuarterlyEPS })
	benchAnnual := BenchmarkEPS(reports, func(r *entity.FinancialReport) []entity.MetricPoint { return r.AnnualEPS })

	for symbol, res := range results {
		report, ok := reports[symbol]
		if !ok || benchQuarterly == nil || benchAnnual == nil {
			res.Scores[common.MethodEPS] = entity.AbsentScore
			continue
		}
		res.Scores[common.MethodEPS] = EPSStrength(report, benchQuarterly, benchAnnual)
		if s.cfg.Ranking.LeadMethod == common.MethodEPS {
			if score := res.Scores[common.MethodEPS]; score.Valid {
				res.RS = score.Value
			}
		}
	}
}

// attachInfo decorates rows with name/sector/industry. Lookup failures are
// tolerated; the row simply stays bare.
func (s *rankingService) attachInfo(ctx context.Context, results map[string]*SymbolResult) {
	s.forEachSymbol(results, func(symbol string) {
		info, err := s.fundamentals.GetInfo(ctx, symbol)
		if err != nil {
			return
		}
		results[symbol].Info = info
	})
}

// forEachSymbol runs fn for every symbol through the bounded worker pool.
func (s *rankingService) forEachSymbol(results map[string]*SymbolResult, fn func(symbol string)) {
	workers := s.cfg.Ranking.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			for symbol := range jobs {
				fn(symbol)
			}
		})
	}
	for symbol := range results {
		jobs <- symbol
	}
	close(jobs)
	wg.Wait()
}

func historicalRatings(results map[string]*SymbolResult, pick func(*SymbolResult) float64) map[string]entity.Rating {
	values := make(map[string]float64, len(results))
	for symbol, res := range results {
		values[symbol] = pick(res)
	}
	return RatingsFromValues(values)
}

// snapshotID derives a reproducible table ID so identical runs publish
// identical tables.
func snapshotID(asOf time.Time, leadMethod string, symbols []string) uuid.UUID {
	seed := asOf.Format("2006-01-02") + "|" + leadMethod + "|" + strings.Join(symbols, ",")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}

func truncateAfter(bars []entity.Bar, asOf time.Time) []entity.Bar {
	out := bars[:0:0]
	for _, b := range bars {
		if !b.Date.After(asOf) {
			out = append(out, b)
		}
	}
	return out
}

func containsMethod(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
