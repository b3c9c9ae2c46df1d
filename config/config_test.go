package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "BTC_USD", cfg.Backtest.Instrument)
	assert.True(t, cfg.Backtest.StartingBalance.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 40.0, cfg.Strategy.LowThreshold)
	assert.Equal(t, 85.0, cfg.Strategy.HighThreshold)
	assert.Equal(t, 3, cfg.Strategy.RetryLimit)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:   "bad strategy",
			mutate: func(c *Config) { c.Strategy.LowThreshold = 90 },
			errMsg: "strategy: low_threshold",
		},
		{
			name:   "missing instrument",
			mutate: func(c *Config) { c.Backtest.Instrument = "" },
			errMsg: "backtest.instrument is required",
		},
		{
			name:   "unknown instrument",
			mutate: func(c *Config) { c.Backtest.Instrument = "INVALID" },
			errMsg: "unknown instrument",
		},
		{
			name:   "zero balance",
			mutate: func(c *Config) { c.Backtest.StartingBalance = decimal.Zero },
			errMsg: "backtest.starting_balance must be positive",
		},
		{
			name:   "negative units",
			mutate: func(c *Config) { c.Backtest.Units = decimal.NewFromInt(-1) },
			errMsg: "backtest.units must not be negative",
		},
		{
			name:   "bad timeframe",
			mutate: func(c *Config) { c.Backtest.Timeframe = "H2" },
			errMsg: "backtest.timeframe",
		},
		{
			name:   "resample finer than input",
			mutate: func(c *Config) { c.Backtest.Resample = "M15" },
			errMsg: "backtest.resample must be a multiple",
		},
		{
			name:   "resample to daily",
			mutate: func(c *Config) { c.Backtest.Resample = "D1" },
		},
		{
			name:   "invalid journal type",
			mutate: func(c *Config) { c.Journal.Type = "invalid" },
			errMsg: "journal.type must be 'csv' or 'sqlite'",
		},
		{
			name:   "csv without dir",
			mutate: func(c *Config) { c.Journal = JournalConfig{Type: "csv"} },
			errMsg: "journal dir required for CSV type",
		},
		{
			name:   "sqlite without path",
			mutate: func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} },
			errMsg: "journal db_path required for SQLite type",
		},
		{
			name:   "journal disabled",
			mutate: func(c *Config) { c.Journal = JournalConfig{} },
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Log.Level = "loud" },
			errMsg: "log.level",
		},
		{
			name:   "log level accepted by the logger",
			mutate: func(c *Config) { c.Log.Level = "WARNING" },
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Log.Format = "xml" },
			errMsg: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := Default()
	cfg.Strategy.LowThreshold = 35
	cfg.Backtest.StartingBalance = decimal.RequireFromString("2500.50")
	cfg.Metrics.Addr = ":9108"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 35.0, loaded.Strategy.LowThreshold)
	assert.True(t, loaded.Backtest.StartingBalance.Equal(cfg.Backtest.StartingBalance))
	assert.Equal(t, ":9108", loaded.Metrics.Addr)
	assert.Equal(t, cfg.Strategy.Checkpoints, loaded.Strategy.Checkpoints)
}

func TestSaveAndLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	cfg := Default()
	cfg.Journal = JournalConfig{Type: "csv", Dir: "./out"}
	require.NoError(t, cfg.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"low_threshold": 40`)

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", loaded.Journal.Type)
	assert.Equal(t, "./out", loaded.Journal.Dir)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "partial.yaml")

	content := `
strategy:
  low_threshold: 30
  high_threshold: 80
backtest:
  instrument: ETH_USD
  starting_balance: 750
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Strategy.LowThreshold)
	assert.Equal(t, 80.0, cfg.Strategy.HighThreshold)
	assert.Equal(t, 14, cfg.Strategy.Period)
	assert.Equal(t, 0.30, cfg.Strategy.MinProfit)
	assert.Equal(t, "ETH_USD", cfg.Backtest.Instrument)
	assert.True(t, cfg.Backtest.StartingBalance.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, "H1", cfg.Backtest.Timeframe)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")

	tmpDir := t.TempDir()
	bad := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("strategy: [unclosed"), 0644))
	_, err = LoadFromFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	invalid := filepath.Join(tmpDir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("backtest:\n  instrument: NOPE\n"), 0644))
	_, err = LoadFromFile(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestStrategyYAML(t *testing.T) {
	out := string(Default().StrategyYAML())
	assert.Contains(t, out, "low_threshold: 40")
	assert.Contains(t, out, "first_check: 1")
}
