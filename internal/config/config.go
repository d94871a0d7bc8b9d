// Package config loads TradingConstraints and StrategyConfig from YAML
// files, and database/logging settings from the environment, the way
// this codebase's other command-line entrypoints load their settings.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"rebalancer/internal/engine"
	"rebalancer/money"
)

// constraintsFile is the YAML shape LoadConstraints parses; fields left
// unset keep the values of the starting preset (DefaultConstraints when
// "preset" is empty). A zero float field counts as unset.
type constraintsFile struct {
	MinTradeValue         string   `yaml:"min_trade_value"`
	RebalanceThreshold     float64  `yaml:"rebalance_threshold"`
	MaxTurnover            *float64 `yaml:"max_turnover"`
	MinLiquidity           float64  `yaml:"min_liquidity"`
	AllowFractionalShares  *bool    `yaml:"allow_fractional_shares"`
	MaxPositionSize        *float64 `yaml:"max_position_size"`
	TransactionCostBps     float64  `yaml:"transaction_cost_bps"`
	Preset                 string   `yaml:"preset"`
}

// LoadConstraints parses a YAML constraints file at path. A non-empty
// "preset" field ("conservative"|"moderate"|"risky") seeds the starting
// point before field-level overrides are applied; an empty one starts from
// DefaultConstraints.
func LoadConstraints(path string) (engine.TradingConstraints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.TradingConstraints{}, fmt.Errorf("read constraints file: %w", err)
	}

	var f constraintsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return engine.TradingConstraints{}, fmt.Errorf("parse constraints file: %w", err)
	}

	tc := engine.ConstraintsForRiskProfile(f.Preset)
	if f.Preset == "" {
		tc = engine.DefaultConstraints()
	}

	if f.MinTradeValue != "" {
		v, err := money.FromString(f.MinTradeValue)
		if err != nil {
			return engine.TradingConstraints{}, fmt.Errorf("min_trade_value: %w", err)
		}
		tc.MinTradeValue = v
	}
	if f.RebalanceThreshold != 0 {
		tc.RebalanceThreshold = f.RebalanceThreshold
	}
	if f.MaxTurnover != nil {
		tc.MaxTurnover = f.MaxTurnover
	}
	if f.MinLiquidity != 0 {
		tc.MinLiquidity = f.MinLiquidity
	}
	if f.AllowFractionalShares != nil {
		tc.AllowFractionalShares = *f.AllowFractionalShares
	}
	if f.MaxPositionSize != nil {
		tc.MaxPositionSize = f.MaxPositionSize
	}
	if f.TransactionCostBps != 0 {
		tc.TransactionCostBps = f.TransactionCostBps
	}
	return tc, nil
}

// strategyFile is the YAML shape LoadStrategy parses.
type strategyFile struct {
	Kind string `yaml:"kind"` // "simple" or "cvar"
	CVaR struct {
		Scenarios       int     `yaml:"scenarios"`
		ConfidenceLevel float64 `yaml:"confidence_level"`
		RiskAversion    float64 `yaml:"risk_aversion"`
		Periods         int     `yaml:"periods"`
		Seed            *int64  `yaml:"seed"`
	} `yaml:"cvar"`
}

// LoadStrategy parses a YAML strategy config file at path.
func LoadStrategy(path string) (engine.StrategyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.StrategyConfig{}, fmt.Errorf("read strategy file: %w", err)
	}

	var f strategyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return engine.StrategyConfig{}, fmt.Errorf("parse strategy file: %w", err)
	}

	cfg := engine.StrategyConfig{Kind: engine.StrategyKindSimple}
	if f.Kind == "cvar" {
		cfg.Kind = engine.StrategyKindCVaR
		cfg.CVaR = engine.CVaRConfig{
			Scenarios:       f.CVaR.Scenarios,
			ConfidenceLevel: f.CVaR.ConfidenceLevel,
			RiskAversion:    f.CVaR.RiskAversion,
			Periods:         f.CVaR.Periods,
			Seed:            f.CVaR.Seed,
		}
	}
	return cfg, nil
}

// Env holds the settings LoadEnv resolves from the process environment.
type Env struct {
	DatabaseURL string
	LogLevel    string
	LogPretty   bool
}

// LoadEnv loads a .env file if present (any error from godotenv.Load,
// including the one for an absent file, is ignored) and reads
// DATABASE_URL/LOG_LEVEL/LOG_PRETTY, falling back to the teacher's
// hardcoded-default convention when unset.
func LoadEnv() Env {
	_ = godotenv.Load()

	env := Env{
		DatabaseURL: "postgresql://localhost:5432/rebalancer",
		LogLevel:    "info",
		LogPretty:   true,
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		env.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		env.LogLevel = v
	}
	if v := os.Getenv("LOG_PRETTY"); v == "false" {
		env.LogPretty = false
	}
	return env
}
