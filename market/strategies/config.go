package strategies

import "fmt"

// Checkpoints are duration marks, in candles, used by the exit rules.
type Checkpoints struct {
	FirstCheck  int `json:"first_check" yaml:"first_check"`
	SecondCheck int `json:"second_check" yaml:"second_check"`
	OneDay      int `json:"one_day" yaml:"one_day"`
	HalfWeek    int `json:"half_week" yaml:"half_week"`
	OneWeek     int `json:"one_week" yaml:"one_week"`
}

// RSIDailyConfig holds the thresholds and risk/reward constants of the RSI
// higher-low strategy. Ratios are fractions of the open price.
type RSIDailyConfig struct {
	Period        int     `json:"period" yaml:"period"`
	LowThreshold  float64 `json:"low_threshold" yaml:"low_threshold"`
	HighThreshold float64 `json:"high_threshold" yaml:"high_threshold"`

	MinProfit  float64 `json:"min_profit" yaml:"min_profit"`
	MaxLoss    float64 `json:"max_loss" yaml:"max_loss"`
	DayMax     float64 `json:"day_max" yaml:"day_max"`
	RetryLimit int     `json:"retry_limit" yaml:"retry_limit"`

	Checkpoints Checkpoints `json:"checkpoints" yaml:"checkpoints"`
}

func DefaultCheckpoints() Checkpoints {
	return Checkpoints{
		FirstCheck:  1,
		SecondCheck: 3,
		OneDay:      24,
		HalfWeek:    95,
		OneWeek:     168,
	}
}

func DefaultRSIDailyConfig() RSIDailyConfig {
	return RSIDailyConfig{
		Period:        14,
		LowThreshold:  40,
		HighThreshold: 85,
		MinProfit:     0.30,
		MaxLoss:       0.03,
		DayMax:        0.15,
		RetryLimit:    3,
		Checkpoints:   DefaultCheckpoints(),
	}
}

func (c RSIDailyConfig) Validate() error {
	if c.Period <= 1 {
		return fmt.Errorf("period must be > 1")
	}
	if c.LowThreshold <= 0 || c.HighThreshold > 100 {
		return fmt.Errorf("thresholds must be within (0,100]")
	}
	if c.LowThreshold >= c.HighThreshold {
		return fmt.Errorf("low_threshold (%.2f) must be below high_threshold (%.2f)", c.LowThreshold, c.HighThreshold)
	}
	if c.MinProfit <= 0 {
		return fmt.Errorf("min_profit must be positive")
	}
	if c.MaxLoss <= 0 || c.MaxLoss >= 1 {
		return fmt.Errorf("max_loss must be between 0 and 1")
	}
	if c.DayMax <= 0 {
		return fmt.Errorf("day_max must be positive")
	}
	if c.RetryLimit < 0 {
		return fmt.Errorf("retry_limit must not be negative")
	}

	cp := c.Checkpoints
	if cp.FirstCheck < 1 {
		return fmt.Errorf("checkpoints.first_check must be >= 1")
	}
	if !(cp.FirstCheck < cp.SecondCheck && cp.SecondCheck < cp.OneDay &&
		cp.OneDay < cp.HalfWeek && cp.HalfWeek <= cp.OneWeek) {
		return fmt.Errorf("checkpoints must be increasing: %+v", cp)
	}
	return nil
}
