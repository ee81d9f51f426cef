// Package config provides configuration management for the trading pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Structure StructureConfig `mapstructure:"structure"`
	Sizing    SizingConfig    `mapstructure:"sizing"`
	Decision  DecisionConfig  `mapstructure:"decision"`
}

// AnalysisConfig holds multi-timeframe analysis configuration.
type AnalysisConfig struct {
	Style string `mapstructure:"style"` // "swing", "longterm"
}

// StructureConfig holds structure-validator configuration.
// Each require_* flag gates one detector check; disabling a check removes its
// weight from the achievable maximum rather than granting a free pass.
type StructureConfig struct {
	RequireBOS         bool    `mapstructure:"require_bos"`
	RequireCHOCH       bool    `mapstructure:"require_choch"`
	RequireOrderBlocks bool    `mapstructure:"require_order_blocks"`
	RequireFVGs        bool    `mapstructure:"require_fvgs"`
	RequireMitigation  bool    `mapstructure:"require_mitigation"`
	MinScore           float64 `mapstructure:"min_score"`
	Lookback           int     `mapstructure:"lookback"`
}

// SizingConfig holds the portfolio risk budget for position sizing.
type SizingConfig struct {
	RiskPerTradeAmount        float64 `mapstructure:"risk_per_trade_amount"`
	MaxPositionExposureAmount float64 `mapstructure:"max_position_exposure_amount"`
}

// DecisionConfig holds decision-engine configuration.
type DecisionConfig struct {
	Enabled               bool    `mapstructure:"enabled"`
	MinRiskReward         float64 `mapstructure:"min_risk_reward"`
	MinConfidence         float64 `mapstructure:"min_confidence"`
	MaxVolatilityPct      float64 `mapstructure:"max_volatility_pct"`
	MaxPositionsPerSymbol int     `mapstructure:"max_positions_per_symbol"`
	MaxDailyRiskPct       float64 `mapstructure:"max_daily_risk_pct"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/swing-trader"
	}
	return filepath.Join(home, ".config", "swing-trader")
}

// Default returns the configuration with all documented defaults applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	cfg.Analysis.Style = "swing"
	cfg.Structure.RequireBOS = true
	cfg.Structure.RequireCHOCH = true
	cfg.Structure.RequireOrderBlocks = true
	cfg.Structure.RequireFVGs = true
	cfg.Structure.RequireMitigation = true
	cfg.Structure.MinScore = 50.0
	cfg.Structure.Lookback = 10
	cfg.Sizing.RiskPerTradeAmount = 1000.0
	cfg.Sizing.MaxPositionExposureAmount = 100000.0
	cfg.Decision.Enabled = true
	cfg.Decision.MinRiskReward = 2.0
	cfg.Decision.MinConfidence = 60.0
	cfg.Decision.MaxVolatilityPct = 8.0
	cfg.Decision.MaxPositionsPerSymbol = 1
	cfg.Decision.MaxDailyRiskPct = 2.0
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing config
// file yields the defaults.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setViperDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("analysis.style", "swing")
	v.SetDefault("structure.require_bos", true)
	v.SetDefault("structure.require_choch", true)
	v.SetDefault("structure.require_order_blocks", true)
	v.SetDefault("structure.require_fvgs", true)
	v.SetDefault("structure.require_mitigation", true)
	v.SetDefault("structure.min_score", 50.0)
	v.SetDefault("structure.lookback", 10)
	v.SetDefault("sizing.risk_per_trade_amount", 1000.0)
	v.SetDefault("sizing.max_position_exposure_amount", 100000.0)
	v.SetDefault("decision.enabled", true)
	v.SetDefault("decision.min_risk_reward", 2.0)
	v.SetDefault("decision.min_confidence", 60.0)
	v.SetDefault("decision.max_volatility_pct", 8.0)
	v.SetDefault("decision.max_positions_per_symbol", 1)
	v.SetDefault("decision.max_daily_risk_pct", 2.0)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SWING_TRADER_STYLE"); v != "" {
		cfg.Analysis.Style = v
	}
	if v := os.Getenv("SWING_TRADER_DECISION_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Decision.Enabled = b
		}
	}
	if v := os.Getenv("SWING_TRADER_RISK_PER_TRADE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Sizing.RiskPerTradeAmount = f
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Analysis.Style != "swing" && c.Analysis.Style != "longterm" {
		return fmt.Errorf("invalid analysis style: %s (must be 'swing' or 'longterm')", c.Analysis.Style)
	}
	if c.Structure.MinScore < 0 || c.Structure.MinScore > 100 {
		return fmt.Errorf("structure.min_score must be between 0 and 100")
	}
	if c.Structure.Lookback <= 0 {
		return fmt.Errorf("structure.lookback must be positive")
	}
	if c.Sizing.RiskPerTradeAmount < 0 {
		return fmt.Errorf("sizing.risk_per_trade_amount must be non-negative")
	}
	if c.Sizing.MaxPositionExposureAmount < 0 {
		return fmt.Errorf("sizing.max_position_exposure_amount must be non-negative")
	}
	if c.Decision.MinRiskReward < 0 {
		return fmt.Errorf("decision.min_risk_reward must be non-negative")
	}
	if c.Decision.MinConfidence < 0 || c.Decision.MinConfidence > 100 {
		return fmt.Errorf("decision.min_confidence must be between 0 and 100")
	}
	if c.Decision.MaxVolatilityPct <= 0 {
		return fmt.Errorf("decision.max_volatility_pct must be positive")
	}
	if c.Decision.MaxPositionsPerSymbol < 1 {
		return fmt.Errorf("decision.max_positions_per_symbol must be at least 1")
	}
	if c.Decision.MaxDailyRiskPct <= 0 {
		return fmt.Errorf("decision.max_daily_risk_pct must be positive")
	}
	return nil
}
