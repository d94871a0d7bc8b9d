package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"rebalancer/money"
	"rebalancer/types"
)

func threeAssetPortfolio(t *testing.T) types.Portfolio {
	t.Helper()
	positions := []types.Position{
		{Asset: types.Asset{Ticker: "AAPL", CurrentPrice: money.MustFromString("100.00")}, Shares: money.MustFromString("3"), TargetAllocation: 0.34},
		{Asset: types.Asset{Ticker: "BND", CurrentPrice: money.MustFromString("50.00")}, Shares: money.MustFromString("6"), TargetAllocation: 0.33},
		{Asset: types.Asset{Ticker: "VTI", CurrentPrice: money.MustFromString("200.00")}, Shares: money.MustFromString("1.5"), TargetAllocation: 0.33},
	}
	p, err := types.NewPortfolio("scenario-c", money.MustFromString("0"), positions...)
	require.NoError(t, err)
	return p
}

// Scenario C — a near-balanced three-asset portfolio should require at
// most a small correction and always report a CVaR figure.
func TestScenarioCBalancedThreeAssetCVaR(t *testing.T) {
	p := threeAssetPortfolio(t)
	cfg := StrategyConfig{Kind: StrategyKindCVaR, CVaR: CVaRConfig{Scenarios: 64, Periods: 20}}

	result, err := Rebalance(context.Background(), p, cfg, DefaultConstraints())
	require.NoError(t, err)
	require.NotNil(t, result.Metrics.CVaR)
	require.NotNil(t, result.Metrics.Iterations)
	require.NotEmpty(t, result.Metrics.OptimalWeights)
}

// Scenario D — with no cash on hand and an aggressive liquidity floor, no
// BUY the optimizer proposes may survive the floor's scale-down; SELLs may.
func TestScenarioDLiquidityFloorSuppressesBuys(t *testing.T) {
	p := threeAssetPortfolio(t)
	tc := DefaultConstraints()
	tc.MinLiquidity = 0.99

	cfg := StrategyConfig{Kind: StrategyKindCVaR, CVaR: CVaRConfig{Scenarios: 64, Periods: 20}}
	result, err := Rebalance(context.Background(), p, cfg, tc)
	require.NoError(t, err)

	for _, tr := range result.Trades {
		require.NotEqual(t, types.ActionBuy, tr.Action, "no BUY should survive an unreachable liquidity floor")
	}
}

func TestCVaRRebalanceDeterministicGivenExplicitSeed(t *testing.T) {
	p := threeAssetPortfolio(t)
	seed := int64(11)
	cfg := StrategyConfig{Kind: StrategyKindCVaR, CVaR: CVaRConfig{Scenarios: 64, Periods: 20, Seed: &seed}}

	a, err := Rebalance(context.Background(), p, cfg, DefaultConstraints())
	require.NoError(t, err)
	b, err := Rebalance(context.Background(), p, cfg, DefaultConstraints())
	require.NoError(t, err)

	require.Equal(t, *a.Metrics.CVaR, *b.Metrics.CVaR)
	require.Equal(t, a.Metrics.OptimalWeights, b.Metrics.OptimalWeights)
}

func TestProjectToBoundsClipsAndRenormalizes(t *testing.T) {
	w := []float64{1.2, -0.1, 0.3}
	out := projectToBounds(w, 1.0)
	sum := 0.0
	for _, wi := range out {
		require.GreaterOrEqual(t, wi, 0.0)
		require.LessOrEqual(t, wi, 1.0)
		sum += wi
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestPenaltyZeroForFeasiblePoint(t *testing.T) {
	w := []float64{0.5, 0.5}
	require.InDelta(t, 0.0, penalty(w, 1.0), 1e-9)
}
