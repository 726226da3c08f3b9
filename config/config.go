package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "QUANT"

// Config drives the demo runner. Every key is read from QUANT_<KEY>, optionally
// seeded from a .env file.
type Config struct {
	Spot            float64
	RiskFreeRate    float64
	Volatility      float64 // model volatility
	MarketVol       float64 // volatility implied by the quotes being ranked
	Expiry          float64 // years
	StrikeWidth     float64 // ladder spans spot*(1±width)
	StrikeStep      float64
	Simulations     int
	Workers         int
	Seed            uint64
	Confidence      float64
	TopK            int
	OutputFile      string
	LogLevel        string
	LogDevelopment  bool
	CorrelationDays int
}

// Load reads envFile when present, then the environment. A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Spot:            v.GetFloat64("SPOT"),
		RiskFreeRate:    v.GetFloat64("RISK_FREE_RATE"),
		Volatility:      v.GetFloat64("VOLATILITY"),
		MarketVol:       v.GetFloat64("MARKET_VOLATILITY"),
		Expiry:          v.GetFloat64("EXPIRY"),
		StrikeWidth:     v.GetFloat64("STRIKE_WIDTH"),
		StrikeStep:      v.GetFloat64("STRIKE_STEP"),
		Simulations:     v.GetInt("SIMULATIONS"),
		Workers:         v.GetInt("WORKERS"),
		Seed:            v.GetUint64("SEED"),
		Confidence:      v.GetFloat64("CONFIDENCE"),
		TopK:            v.GetInt("TOP_K"),
		OutputFile:      v.GetString("OUTPUT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogDevelopment:  v.GetBool("LOG_DEVELOPMENT"),
		CorrelationDays: v.GetInt("CORRELATION_DAYS"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SPOT", 100.0)
	v.SetDefault("RISK_FREE_RATE", 0.05)
	v.SetDefault("VOLATILITY", 0.2)
	v.SetDefault("MARKET_VOLATILITY", 0.22)
	v.SetDefault("EXPIRY", 1.0)
	v.SetDefault("STRIKE_WIDTH", 0.2)
	v.SetDefault("STRIKE_STEP", 5.0)
	v.SetDefault("SIMULATIONS", 10000)
	v.SetDefault("WORKERS", runtime.NumCPU())
	v.SetDefault("SEED", 42)
	v.SetDefault("CONFIDENCE", 0.95)
	v.SetDefault("TOP_K", 5)
	v.SetDefault("OUTPUT", "report.json")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)
	v.SetDefault("CORRELATION_DAYS", 252)
}

func (c *Config) Validate() error {
	switch {
	case c.Spot <= 0:
		return fmt.Errorf("QUANT_SPOT must be positive, got %v", c.Spot)
	case c.Volatility < 0 || c.MarketVol < 0:
		return fmt.Errorf("volatilities must be >= 0, got model=%v market=%v", c.Volatility, c.MarketVol)
	case c.Expiry < 0:
		return fmt.Errorf("QUANT_EXPIRY must be >= 0, got %v", c.Expiry)
	case c.StrikeWidth < 0 || c.StrikeWidth >= 1:
		return fmt.Errorf("QUANT_STRIKE_WIDTH must be in [0,1), got %v", c.StrikeWidth)
	case c.StrikeStep <= 0:
		return fmt.Errorf("QUANT_STRIKE_STEP must be positive, got %v", c.StrikeStep)
	case c.Simulations <= 0:
		return fmt.Errorf("QUANT_SIMULATIONS must be positive, got %d", c.Simulations)
	case c.Workers <= 0:
		return fmt.Errorf("QUANT_WORKERS must be positive, got %d", c.Workers)
	case c.Confidence <= 0 || c.Confidence >= 1:
		return fmt.Errorf("QUANT_CONFIDENCE must be in (0,1), got %v", c.Confidence)
	case c.TopK <= 0:
		return fmt.Errorf("QUANT_TOP_K must be positive, got %d", c.TopK)
	case c.CorrelationDays < 3:
		return fmt.Errorf("QUANT_CORRELATION_DAYS must be >= 3, got %d", c.CorrelationDays)
	}
	return nil
}

// Strikes lays out the ladder from spot*(1-width) to spot*(1+width) in StrikeStep increments.
func (c *Config) Strikes() []float64 {
	lo := c.Spot * (1 - c.StrikeWidth)
	hi := c.Spot * (1 + c.StrikeWidth)
	var strikes []float64
	for k := lo; k <= hi+1e-9; k += c.StrikeStep {
		strikes = append(strikes, k)
	}
	return strikes
}
