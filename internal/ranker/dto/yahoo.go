package dto

// GetStockDataParam identifies one market data request.
type GetStockDataParam struct {
	Symbol   string
	Period   string // 6mo, 1y, 2y, 5y, ytd, max
	Interval string // 1d, 1wk, 1mo
}

// YahooChartResponse is the top-level chart API container.
type YahooChartResponse struct {
	Chart YahooChartData `json:"chart"`
}

// YahooChartData carries the chart result list or an error object.
type YahooChartData struct {
	Result []YahooChartResult `json:"result"`
	Error  *YahooError        `json:"error"`
}

// YahooError is the error payload the chart API returns on failure.
type YahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// YahooChartResult holds one symbol's timestamps and quote columns.
type YahooChartResult struct {
	Meta       YahooChartMeta  `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators YahooIndicators `json:"indicators"`
}

// YahooChartMeta carries symbol-level metadata from the chart API.
type YahooChartMeta struct {
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
}

// YahooIndicators groups the quote and adjusted close columns.
type YahooIndicators struct {
	Quote    []YahooQuote    `json:"quote"`
	AdjClose []YahooAdjClose `json:"adjclose"`
}

// YahooQuote holds the OHLCV columns, index-aligned with Timestamp.
type YahooQuote struct {
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []int64   `json:"volume"`
}

// YahooAdjClose holds the split/dividend adjusted close column.
type YahooAdjClose struct {
	AdjClose []float64 `json:"adjclose"`
}

// YahooQuoteSummaryResponse is the quoteSummary API container used for
// fundamentals and symbol info.
type YahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []YahooQuoteSummaryResult `json:"result"`
		Error  *YahooError               `json:"error"`
	} `json:"quoteSummary"`
}

// YahooQuoteSummaryResult groups the modules requested from quoteSummary.
type YahooQuoteSummaryResult struct {
	AssetProfile *struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`
	Price *struct {
		LongName  string         `json:"longName"`
		MarketCap YahooRawNumber `json:"marketCap"`
	} `json:"price"`
	Earnings *struct {
		FinancialsChart struct {
			Quarterly []YahooEarningsPoint `json:"quarterly"`
			Yearly    []YahooEarningsPoint `json:"yearly"`
		} `json:"financialsChart"`
	} `json:"earnings"`
}

// YahooEarningsPoint is one reported earnings period.
type YahooEarningsPoint struct {
	Date     any            `json:"date"` // "4Q2024" for quarterly, 2024 for yearly
	Earnings YahooRawNumber `json:"earnings"`
}

// YahooRawNumber unwraps Yahoo's {raw, fmt} number envelope.
type YahooRawNumber struct {
	Raw float64 `json:"raw"`
}
