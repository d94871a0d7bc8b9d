package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rebalancer/money"
	"rebalancer/types"
)

func buyTrade(ticker string, shares, price string) types.Trade {
	return types.Trade{Ticker: ticker, Action: types.ActionBuy, Shares: money.MustFromString(shares), CurrentPrice: money.MustFromString(price)}
}

func sellTrade(ticker string, shares, price string) types.Trade {
	return types.Trade{Ticker: ticker, Action: types.ActionSell, Shares: money.MustFromString(shares), CurrentPrice: money.MustFromString(price)}
}

func TestStepMinTradeValueDropsSmallTrades(t *testing.T) {
	tc := DefaultConstraints()
	trades := []types.Trade{
		buyTrade("AAPL", "1", "5.00"),  // value 5, below min_trade_value 10
		buyTrade("META", "1", "20.00"), // value 20, kept
	}
	out := stepMinTradeValue(trades, tc)
	require.Len(t, out, 1)
	require.Equal(t, "META", out[0].Ticker)
}

// The liquidity-floor step must re-filter through min-trade-value: a BUY
// scaled down to satisfy the floor can end up worth less than
// min_trade_value and must not survive into the final trade list.
func TestLiquidityFloorScaleThenReFilterDropsResidualTrade(t *testing.T) {
	aapl := types.Position{
		Asset:            types.Asset{Ticker: "AAPL", CurrentPrice: money.MustFromString("100.00")},
		Shares:           money.MustFromString("1"),
		TargetAllocation: 1.0,
	}
	// cash=80, total=180; chosen so the floor scale-down leaves a ~5-value
	// residual BUY, below the default 10 min_trade_value.
	p, err := types.NewPortfolio("liquidity", money.MustFromString("80"), aapl)
	require.NoError(t, err)

	tc := DefaultConstraints()
	tc.MinLiquidity = 0.4167

	trades := []types.Trade{buyTrade("AAPL", "1", "100.00")}
	scaled, unreachable := stepLiquidityFloor(trades, p, tc)
	require.False(t, unreachable)
	require.Len(t, scaled, 1, "expected a scaled-down residual BUY, not a dropped one")
	require.True(t, scaled[0].Value().LessThan(tc.MinTradeValue), "test setup should produce a sub-threshold residual trade")

	final := stepMinTradeValue(scaled, tc)
	require.Empty(t, final, "the re-filter must drop the residual trade left by the floor scale-down")
}

func TestLiquidityFloorInfeasibleWhenSellsAloneCannotReach(t *testing.T) {
	aapl := types.Position{
		Asset:            types.Asset{Ticker: "AAPL", CurrentPrice: money.MustFromString("100.00")},
		Shares:           money.MustFromString("1"),
		TargetAllocation: 1.0,
	}
	p, err := types.NewPortfolio("liquidity-infeasible", money.MustFromString("0"), aapl)
	require.NoError(t, err)

	tc := DefaultConstraints()
	tc.MinLiquidity = 0.99

	trades := []types.Trade{sellTrade("AAPL", "0.01", "100.00")}
	_, unreachable := stepLiquidityFloor(trades, p, tc)
	require.True(t, unreachable)
}

func TestMaxTurnoverScalesAllTradesUniformly(t *testing.T) {
	aapl := types.Position{
		Asset:            types.Asset{Ticker: "AAPL", CurrentPrice: money.MustFromString("100.00")},
		Shares:           money.MustFromString("0"),
		TargetAllocation: 1.0,
	}
	p, err := types.NewPortfolio("turnover", money.MustFromString("1000"), aapl)
	require.NoError(t, err)

	turnoverCap := 0.05
	tc := DefaultConstraints()
	tc.MaxTurnover = &turnoverCap

	trades := []types.Trade{buyTrade("AAPL", "9", "100.00")} // value 900, cap = 5% of 1000 = 50
	out := stepMaxTurnover(trades, p, tc)
	require.Len(t, out, 1)
	require.InDelta(t, 50.0, out[0].Value().Float64(), 1.0)
}

func TestApplyConstraintsPreservesStepOrderOnRescale(t *testing.T) {
	aapl := types.Position{
		Asset:            types.Asset{Ticker: "AAPL", CurrentPrice: money.MustFromString("100.00")},
		Shares:           money.MustFromString("0"),
		TargetAllocation: 1.0,
	}
	p, err := types.NewPortfolio("combo", money.MustFromString("1000"), aapl)
	require.NoError(t, err)

	turnoverCap := 0.05
	tc := DefaultConstraints()
	tc.MaxTurnover = &turnoverCap
	tc.MinTradeValue = money.MustFromString("100") // above the post-scale trade value

	trades := []types.Trade{buyTrade("AAPL", "9", "100.00")}
	driftByTicker := map[string]float64{"AAPL": 1.0}

	out, warn := applyConstraints(trades, p, tc, driftByTicker)
	require.False(t, warn.liquidityUnreachable)
	// the turnover scale-down produces a ~50-value trade, below the 100
	// min_trade_value re-filter, so the final list must be empty.
	require.Empty(t, out)
}
