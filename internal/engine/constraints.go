package engine

import "rebalancer/money"

// TradingConstraints bundles the closed set of knobs the Constraint
// Pipeline enforces. The zero value is not valid; use
// DefaultConstraints or one of the named presets below and override
// individual fields as needed.
type TradingConstraints struct {
	MinTradeValue          money.Value
	RebalanceThreshold      float64
	MaxTurnover             *float64 // nil means uncapped
	MinLiquidity            float64
	AllowFractionalShares   bool
	MaxPositionSize         *float64 // nil means uncapped
	TransactionCostBps      float64
}

// DefaultConstraints matches the defaults table: min_trade_value=10,
// rebalance_threshold=0.02, min_liquidity=0.00, transaction_cost_bps=0.0025,
// fractional shares allowed, no turnover or position-size cap.
func DefaultConstraints() TradingConstraints {
	return TradingConstraints{
		MinTradeValue:         money.MustFromString("10"),
		RebalanceThreshold:     0.02,
		MaxTurnover:            nil,
		MinLiquidity:           0.00,
		AllowFractionalShares:  true,
		MaxPositionSize:        nil,
		TransactionCostBps:     0.0025,
	}
}

// ConservativeConstraints: min_liquidity=0.50, threshold=0.01.
func ConservativeConstraints() TradingConstraints {
	c := DefaultConstraints()
	c.MinLiquidity = 0.50
	c.RebalanceThreshold = 0.01
	return c
}

// ModerateConstraints: min_liquidity=0.10, threshold=0.02.
func ModerateConstraints() TradingConstraints {
	c := DefaultConstraints()
	c.MinLiquidity = 0.10
	c.RebalanceThreshold = 0.02
	return c
}

// RiskyConstraints: min_liquidity=0.05, threshold=0.05.
func RiskyConstraints() TradingConstraints {
	c := DefaultConstraints()
	c.MinLiquidity = 0.05
	c.RebalanceThreshold = 0.05
	return c
}

// ConstraintsForRiskProfile resolves a Goal's RiskProfile tag to its
// named preset, defaulting to ModerateConstraints for an unrecognized tag.
func ConstraintsForRiskProfile(profile string) TradingConstraints {
	switch profile {
	case "conservative":
		return ConservativeConstraints()
	case "risky":
		return RiskyConstraints()
	default:
		return ModerateConstraints()
	}
}

// TransactionCost applies the proportional cost rate to a total traded
// value.
func (c TradingConstraints) TransactionCost(totalTradeValue money.Value) money.Value {
	return totalTradeValue.Mul(decimalFromFloat(c.TransactionCostBps))
}
