package engine

import (
	"context"

	"rebalancer/types"
)

// Rebalance is the core's sole exposed operation: it takes a Portfolio
// snapshot, a strategy selection and a set of trading constraints, and
// returns a RebalanceResult describing proposed trades only. The
// Portfolio is never mutated.
func Rebalance(ctx context.Context, p types.Portfolio, cfg StrategyConfig, tc TradingConstraints) (types.RebalanceResult, error) {
	strategy := BuildStrategy(cfg)
	return strategy.Rebalance(ctx, p, tc)
}
