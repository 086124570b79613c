package config

import (
	"os"
	"path/filepath"
	"testing"

	"golang-stock-ranker/internal/entity"
	"golang-stock-ranker/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Ranking.Universe.Symbols = []string{"AAPL"}
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, []string{common.MethodIBD}, cfg.Ranking.Methods)
	assert.Equal(t, common.MethodIBD, cfg.Ranking.LeadMethod)
	assert.Equal(t, "^GSPC", cfg.Ranking.Benchmark)
	assert.Equal(t, []int{63, 126, 189, 252}, cfg.Ranking.IBD.Horizons)
	assert.Equal(t, []float64{0.4, 0.2, 0.2, 0.2}, cfg.Ranking.IBD.Weights)
	assert.Equal(t, 200, cfg.Ranking.Mansfield.Window)
	assert.Equal(t, common.MovingAverageSimple, cfg.Ranking.Mansfield.MAType)
	assert.Equal(t, common.TradingDaysPerYear, cfg.Ranking.MinBars)
	assert.Equal(t, "csv", cfg.Output.Format)
}

func TestValidate(t *testing.T) {
	t.Run("defaults with a universe pass", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown method", func(c *Config) { c.Ranking.Methods = []string{"momentum"} }},
		{"lead not in methods", func(c *Config) { c.Ranking.LeadMethod = common.MethodEPS }},
		{"horizon weight length mismatch", func(c *Config) { c.Ranking.IBD.Weights = []float64{1} }},
		{"weights not summing to one", func(c *Config) { c.Ranking.IBD.Weights = []float64{0.5, 0.3, 0.1, 0.05} }},
		{"negative weight", func(c *Config) { c.Ranking.IBD.Weights = []float64{1.2, -0.2, 0, 0} }},
		{"non-positive min bars", func(c *Config) { c.Ranking.MinBars = -1 }},
		{"non-positive ibd horizon", func(c *Config) {
			c.Ranking.IBD.Horizons = []int{63, -1}
			c.Ranking.IBD.Weights = []float64{0.5, 0.5}
		}},
		{"negative mansfield window", func(c *Config) { c.Ranking.Mansfield.Window = -5 }},
		{"bad ma type", func(c *Config) { c.Ranking.Mansfield.MAType = "WMA" }},
		{"negative ma window", func(c *Config) { c.Ranking.MAWindows = []int{50, -1} }},
		{"zero vma window", func(c *Config) { c.Ranking.VMAWindows = []int{0} }},
		{"empty universe", func(c *Config) { c.Ranking.Universe = Universe{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), entity.ErrConfigurationInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
ranking:
  methods: ["mansfield", "ibd"]
  lead_method: "mansfield"
  universe:
    symbols: ["AAPL", "MSFT"]
  mansfield:
    window: 150
    ma_type: "EMA"
yahoo:
  max_request_per_minute: 30
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"mansfield", "ibd"}, cfg.Ranking.Methods)
	assert.Equal(t, "mansfield", cfg.Ranking.LeadMethod)
	assert.Equal(t, 150, cfg.Ranking.Mansfield.Window)
	assert.Equal(t, "EMA", cfg.Ranking.Mansfield.MAType)
	assert.Equal(t, 30, cfg.Yahoo.MaxRequestPerMinute)
	// unset fields pick up defaults
	assert.Equal(t, "^GSPC", cfg.Ranking.Benchmark)
	assert.Equal(t, common.TradingDaysPerYear, cfg.Ranking.MinBars)
	assert.NoError(t, cfg.Validate())
}
