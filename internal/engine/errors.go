package engine

import "errors"

// Fatal errors abort rebalance() outright.
var (
	ErrEmptyPortfolio        = errors.New("engine: portfolio has no positions")
	ErrInvalidTargets        = errors.New("engine: target allocations sum to more than 1 or include a negative value")
	ErrInvalidCovariance     = errors.New("engine: covariance matrix is not symmetric positive semi-definite")
	ErrInsufficientScenarios = errors.New("engine: fewer than 32 Monte Carlo scenarios requested")
	ErrPrecisionOverflow     = errors.New("engine: monetary value out of representable range")
)

// Recovered conditions never escape rebalance() as an error; they are
// recorded into RebalanceResult.Metrics.Warnings instead. These sentinels
// exist so internal code can still branch on *why* a fallback happened.
var (
	errOptimizerNonConvergent = errors.New("optimizer_non_convergent")
	errLiquidityUnreachable   = errors.New("liquidity_unreachable")
)
