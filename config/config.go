package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rustyeddy/rsidaily/internal/logger"
	"github.com/rustyeddy/rsidaily/market"
	"github.com/rustyeddy/rsidaily/market/strategies"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the complete run configuration
type Config struct {
	Strategy strategies.RSIDailyConfig `json:"strategy" yaml:"strategy"`
	Backtest BacktestConfig            `json:"backtest" yaml:"backtest"`
	Journal  JournalConfig             `json:"journal" yaml:"journal"`
	Log      LogConfig                 `json:"log" yaml:"log"`
	Metrics  MetricsConfig             `json:"metrics" yaml:"metrics"`
}

// BacktestConfig contains paper account and data parameters
type BacktestConfig struct {
	Instrument      string          `json:"instrument" yaml:"instrument"`
	StartingBalance decimal.Decimal `json:"starting_balance" yaml:"starting_balance"`
	Units           decimal.Decimal `json:"units" yaml:"units"`
	CloseAtEnd      bool            `json:"close_at_end" yaml:"close_at_end"`

	// Timeframe of the input file, e.g. "H1".
	Timeframe string `json:"timeframe" yaml:"timeframe"`
	// Resample, when set, aggregates the input to a coarser timeframe.
	Resample string `json:"resample,omitempty" yaml:"resample,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "csv" or "sqlite"
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text or json
}

type MetricsConfig struct {
	// Addr is the listen address of the Prometheus endpoint, empty disables it.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON).
// Fields missing from the file keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// StrategyYAML renders the strategy section, as stored with backtest runs.
func (c *Config) StrategyYAML() []byte {
	data, err := yaml.Marshal(c.Strategy)
	if err != nil {
		return nil
	}
	return data
}

func isYAML(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	if c.Backtest.Instrument == "" {
		return fmt.Errorf("backtest.instrument is required")
	}
	if _, ok := market.Instruments[c.Backtest.Instrument]; !ok {
		return fmt.Errorf("unknown instrument: %s", c.Backtest.Instrument)
	}
	if !c.Backtest.StartingBalance.IsPositive() {
		return fmt.Errorf("backtest.starting_balance must be positive")
	}
	if c.Backtest.Units.IsNegative() {
		return fmt.Errorf("backtest.units must not be negative")
	}
	tf, err := market.TFStringToSeconds(c.Backtest.Timeframe)
	if err != nil {
		return fmt.Errorf("backtest.timeframe: %w", err)
	}
	if c.Backtest.Resample != "" {
		out, err := market.TFStringToSeconds(c.Backtest.Resample)
		if err != nil {
			return fmt.Errorf("backtest.resample: %w", err)
		}
		if out <= tf || out%tf != 0 {
			return fmt.Errorf("backtest.resample must be a multiple of backtest.timeframe")
		}
	}

	switch c.Journal.Type {
	case "":
	case "csv":
		if c.Journal.Dir == "" {
			return fmt.Errorf("journal dir required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Strategy: strategies.DefaultRSIDailyConfig(),
		Backtest: BacktestConfig{
			Instrument:      "BTC_USD",
			StartingBalance: decimal.NewFromInt(10000),
			Units:           decimal.NewFromInt(1),
			CloseAtEnd:      true,
			Timeframe:       "H1",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./rsidaily.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
