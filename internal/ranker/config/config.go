package config

import (
	"fmt"
	"math"
	"time"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/pkg/common"
	"golang-stock-ranker/pkg/config"
)

// Config holds all configuration for the ranking service.
type Config struct {
	App       config.App    `mapstructure:"app"`
	Logger    config.Logger `mapstructure:"logger"`
	API       config.API    `mapstructure:"api"`
	Ranking   Ranking       `mapstructure:"ranking"`
	Yahoo     Yahoo         `mapstructure:"yahoo"`
	Cache     Cache         `mapstructure:"cache"`
	Scheduler Scheduler     `mapstructure:"scheduler"`
	Telegram  Telegram      `mapstructure:"telegram"`
	Output    Output        `mapstructure:"output"`
}

// Ranking holds the engine configuration.
type Ranking struct {
	Methods    []string `mapstructure:"methods"`
	LeadMethod string   `mapstructure:"lead_method"`
	Benchmark  string   `mapstructure:"benchmark"`

	Universe Universe `mapstructure:"universe"`

	Period   string `mapstructure:"period"`
	Interval string `mapstructure:"interval"`
	MinBars  int    `mapstructure:"min_bars"`
	AsOfDate string `mapstructure:"as_of_date"` // YYYY-MM-DD, empty = latest bar

	IBD       IBD       `mapstructure:"ibd"`
	Mansfield Mansfield `mapstructure:"mansfield"`

	MAWindows  []int `mapstructure:"ma_windows"`
	VMAWindows []int `mapstructure:"vma_windows"`

	Workers int `mapstructure:"workers"`
	TopN    int `mapstructure:"top_n"`
}

// Universe selects the symbol universe: either a source code resolved by the
// ticker repository or an explicit symbol list.
type Universe struct {
	Source  string   `mapstructure:"source"`
	Symbols []string `mapstructure:"symbols"`
}

// IBD holds the multi-horizon weighted return configuration.
type IBD struct {
	Horizons []int     `mapstructure:"horizons"` // trading days
	Weights  []float64 `mapstructure:"weights"`
}

// Mansfield holds the normalized Dorsey ratio configuration.
type Mansfield struct {
	Window int    `mapstructure:"window"`
	MAType string `mapstructure:"ma_type"`
}

// Yahoo holds the market data source configuration.
type Yahoo struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
}

// Cache holds fetch cache configuration.
type Cache struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Scheduler holds cron refresh configuration for serve mode.
type Scheduler struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// Telegram holds notifier configuration.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Output holds export configuration for the rank command.
type Output struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"` // csv or json
}

// Load loads configuration from a file and applies defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	r := &c.Ranking
	if len(r.Methods) == 0 {
		r.Methods = []string{common.MethodIBD}
	}
	if r.LeadMethod == "" {
		r.LeadMethod = r.Methods[0]
	}
	if r.Benchmark == "" {
		r.Benchmark = "^GSPC"
	}
	if r.Period == "" {
		r.Period = "2y"
	}
	if r.Interval == "" {
		r.Interval = "1d"
	}
	if r.MinBars == 0 {
		r.MinBars = common.TradingDaysPerYear
	}
	if len(r.IBD.Horizons) == 0 {
		r.IBD.Horizons = []int{63, 126, 189, 252}
	}
	if len(r.IBD.Weights) == 0 {
		r.IBD.Weights = []float64{0.4, 0.2, 0.2, 0.2}
	}
	if r.Mansfield.Window == 0 {
		r.Mansfield.Window = 200
	}
	if r.Mansfield.MAType == "" {
		r.Mansfield.MAType = common.MovingAverageSimple
	}
	if len(r.MAWindows) == 0 {
		r.MAWindows = []int{50, 200}
	}
	if len(r.VMAWindows) == 0 {
		r.VMAWindows = []int{50}
	}
	if r.Workers == 0 {
		r.Workers = 8
	}
	if r.TopN == 0 {
		r.TopN = 10
	}
	if c.Yahoo.BaseURL == "" {
		c.Yahoo.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.Yahoo.MaxRequestPerMinute == 0 {
		c.Yahoo.MaxRequestPerMinute = 120
	}
	if c.Yahoo.TimeoutSeconds == 0 {
		c.Yahoo.TimeoutSeconds = 10
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 15 * time.Minute
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}
	if c.Output.Format == "" {
		c.Output.Format = "csv"
	}
}

// Validate rejects an unusable ranking configuration. It runs before any
// fetch so a bad config never costs a network round trip.
func (c *Config) Validate() error {
	r := &c.Ranking
	known := map[string]bool{
		common.MethodMansfield: true,
		common.MethodIBD:       true,
		common.MethodEPS:       true,
	}
	if len(r.Methods) == 0 {
		return fmt.Errorf("%w: no methods requested", entity.ErrConfigurationInvalid)
	}
	for _, m := range r.Methods {
		if !known[m] {
			return fmt.Errorf("%w: unknown method %q", entity.ErrConfigurationInvalid, m)
		}
	}
	lead := false
	for _, m := range r.Methods {
		if m == r.LeadMethod {
			lead = true
		}
	}
	if !lead {
		return fmt.Errorf("%w: lead method %q not in methods", entity.ErrConfigurationInvalid, r.LeadMethod)
	}
	if len(r.IBD.Horizons) != len(r.IBD.Weights) {
		return fmt.Errorf("%w: ibd horizons and weights length mismatch", entity.ErrConfigurationInvalid)
	}
	for _, h := range r.IBD.Horizons {
		if h <= 0 {
			return fmt.Errorf("%w: non-positive ibd horizon %d", entity.ErrConfigurationInvalid, h)
		}
	}
	var sum float64
	for _, w := range r.IBD.Weights {
		if w < 0 {
			return fmt.Errorf("%w: negative ibd weight %v", entity.ErrConfigurationInvalid, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%w: ibd weights sum to %v, want 1.0", entity.ErrConfigurationInvalid, sum)
	}
	if r.MinBars <= 0 {
		return fmt.Errorf("%w: min_bars must be positive", entity.ErrConfigurationInvalid)
	}
	if r.Mansfield.Window <= 0 {
		return fmt.Errorf("%w: mansfield window must be positive, got %d", entity.ErrConfigurationInvalid, r.Mansfield.Window)
	}
	if r.Mansfield.MAType != common.MovingAverageSimple && r.Mansfield.MAType != common.MovingAverageExponential {
		return fmt.Errorf("%w: mansfield ma_type must be SMA or EMA", entity.ErrConfigurationInvalid)
	}
	for _, w := range r.MAWindows {
		if w <= 0 {
			return fmt.Errorf("%w: non-positive ma window %d", entity.ErrConfigurationInvalid, w)
		}
	}
	for _, w := range r.VMAWindows {
		if w <= 0 {
			return fmt.Errorf("%w: non-positive vma window %d", entity.ErrConfigurationInvalid, w)
		}
	}
	if r.Universe.Source == "" && len(r.Universe.Symbols) == 0 {
		return fmt.Errorf("%w: universe has no source and no symbols", entity.ErrConfigurationInvalid)
	}
	return nil
}
