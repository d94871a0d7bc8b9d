package engine

import (
	"math"

	"rebalancer/money"
	"rebalancer/types"
)

// pipelineWarnings carries side-channel warnings produced while applying
// the Constraint Pipeline, merged into RebalanceResult.Metrics.Warnings by
// the caller.
type pipelineWarnings struct {
	liquidityUnreachable bool
}

// applyConstraints runs the six-step pipeline in the order the spec
// fixes as contract: threshold, fractional-share truncation, min-trade-
// value, max-position-size redistribution, liquidity floor scaling (with
// mandatory re-filter), max-turnover scaling (with mandatory re-filter).
// Omitting either re-filter after a scaling step is the bug this pipeline
// exists to prevent — don't reorder these without re-reading step 5.
func applyConstraints(trades []types.Trade, p types.Portfolio, tc TradingConstraints, driftByTicker map[string]float64) ([]types.Trade, pipelineWarnings) {
	var warn pipelineWarnings

	trades = stepRebalanceThreshold(trades, tc, driftByTicker)
	trades = stepFractionalShares(trades, tc)
	trades = stepMinTradeValue(trades, tc)
	trades = stepMaxPositionSize(trades, p, tc)

	trades, liquidityBit := stepLiquidityFloor(trades, p, tc)
	trades = stepMinTradeValue(trades, tc)
	warn.liquidityUnreachable = liquidityBit

	trades = stepMaxTurnover(trades, p, tc)
	trades = stepMinTradeValue(trades, tc)

	return trades, warn
}

// step 1: drop trades whose implied weight delta is below
// rebalance_threshold.
func stepRebalanceThreshold(trades []types.Trade, tc TradingConstraints, driftByTicker map[string]float64) []types.Trade {
	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		d := driftByTicker[t.Ticker]
		if math.Abs(d) < tc.RebalanceThreshold {
			continue
		}
		out = append(out, t)
	}
	return out
}

// step 2: if fractional shares are disallowed, truncate to whole shares
// and recompute value; drop trades that truncate to zero.
func stepFractionalShares(trades []types.Trade, tc TradingConstraints) []types.Trade {
	if tc.AllowFractionalShares {
		return trades
	}
	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		truncated := math.Floor(t.Shares.Float64())
		if truncated <= 0 {
			continue
		}
		shares, err := money.FromFloat64(truncated, 8)
		if err != nil {
			continue
		}
		t.Shares = shares
		out = append(out, t)
	}
	return out
}

// step 3: drop trades with value < min_trade_value.
func stepMinTradeValue(trades []types.Trade, tc TradingConstraints) []types.Trade {
	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Value().LessThan(tc.MinTradeValue) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// step 4: any BUY that would push its position above max_position_size is
// reduced; the excess value is redistributed proportionally across other
// underweight BUYs, or dropped if none remain underweight.
func stepMaxPositionSize(trades []types.Trade, p types.Portfolio, tc TradingConstraints) []types.Trade {
	if tc.MaxPositionSize == nil {
		return trades
	}
	positionCap := *tc.MaxPositionSize
	total := p.TotalValue().Float64()
	if total <= 0 {
		return trades
	}
	capValue := positionCap * total

	out := make([]types.Trade, len(trades))
	copy(out, trades)

	var overflow float64
	underweightIdx := make([]int, 0, len(out))

	for i, t := range out {
		if t.Action != types.ActionBuy {
			continue
		}
		pos, ok := p.Position(t.Ticker)
		if !ok {
			continue
		}
		currentValue := pos.MarketValue().Float64()
		newValue := currentValue + t.Value().Float64()
		if newValue > capValue {
			allowed := math.Max(capValue-currentValue, 0)
			excessValue := t.Value().Float64() - allowed
			overflow += excessValue
			price := t.CurrentPrice.Float64()
			allowedShares := 0.0
			if price > 0 {
				allowedShares = allowed / price
			}
			shares, err := money.FromFloat64(allowedShares, 8)
			if err == nil {
				out[i].Shares = shares
			}
		}
		// a buy that is still below cap after any reduction is a
		// redistribution target for other positions' overflow.
		remainingCapacity := capValue - (currentValue + out[i].Value().Float64())
		if remainingCapacity > 0 {
			underweightIdx = append(underweightIdx, i)
		}
	}

	if overflow <= 0 || len(underweightIdx) == 0 {
		return filterPositiveShares(out)
	}

	// Redistribute proportionally to each underweight buy's remaining
	// headroom under the cap.
	headroom := make([]float64, len(underweightIdx))
	totalHeadroom := 0.0
	for k, idx := range underweightIdx {
		pos, _ := p.Position(out[idx].Ticker)
		currentValue := pos.MarketValue().Float64()
		h := capValue - (currentValue + out[idx].Value().Float64())
		if h < 0 {
			h = 0
		}
		headroom[k] = h
		totalHeadroom += h
	}
	if totalHeadroom <= 0 {
		return filterPositiveShares(out)
	}

	for k, idx := range underweightIdx {
		share := headroom[k] / totalHeadroom
		addValue := math.Min(overflow*share, headroom[k])
		if addValue <= 0 {
			continue
		}
		price := out[idx].CurrentPrice.Float64()
		if price <= 0 {
			continue
		}
		addShares := addValue / price
		newShares := out[idx].Shares.Float64() + addShares
		shares, err := money.FromFloat64(newShares, 8)
		if err == nil {
			out[idx].Shares = shares
		}
	}

	return filterPositiveShares(out)
}

func filterPositiveShares(trades []types.Trade) []types.Trade {
	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Shares.IsZero() || t.Shares.IsNegative() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// step 5: if post-trade cash would fall below the liquidity floor, scale
// down all BUYs uniformly to restore it. If even zero BUYs (SELLs only)
// cannot reach the floor, this is the InfeasibleConstraints condition:
// emit SELLs only and report liquidityUnreachable=true.
func stepLiquidityFloor(trades []types.Trade, p types.Portfolio, tc TradingConstraints) ([]types.Trade, bool) {
	total := p.TotalValue().Float64()
	if total <= 0 || tc.MinLiquidity <= 0 {
		return trades, false
	}

	buyValue, sellValue := sumBuySell(trades)
	cost := (buyValue + sellValue) * tc.TransactionCostBps
	postTradeCash := p.Cash.Float64() + sellValue - buyValue - cost
	floor := tc.MinLiquidity * total

	if postTradeCash >= floor {
		return trades, false
	}

	if buyValue <= 0 {
		// No BUYs to scale down; SELLs alone can't reach the floor.
		return trades, true
	}

	// Solve for a scale factor k in [0,1] applied to every BUY such that
	// cash + sellValue - k*buyValue - cost(k) >= floor. transaction_cost_bps
	// is small and linear in traded value, so this is a single linear
	// equation in k (cost includes the scaled buy leg; sells stay fixed).
	bps := tc.TransactionCostBps
	// cash + sellValue - k*buyValue - bps*(k*buyValue + sellValue) = floor
	denom := buyValue * (1 + bps)
	k := 1.0
	if denom > 0 {
		k = (p.Cash.Float64() + sellValue - bps*sellValue - floor) / denom
	}
	if k < 0 {
		k = 0
	}
	if k > 1 {
		k = 1
	}

	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Action != types.ActionBuy {
			out = append(out, t)
			continue
		}
		newShares := t.Shares.Float64() * k
		shares, err := money.FromFloat64(newShares, 8)
		if err != nil {
			continue
		}
		t.Shares = shares
		if t.Shares.IsZero() {
			continue
		}
		out = append(out, t)
	}

	return out, k <= 0
}

// step 6: if total absolute trade value exceeds max_turnover * total_value,
// scale every trade uniformly by the ratio.
func stepMaxTurnover(trades []types.Trade, p types.Portfolio, tc TradingConstraints) []types.Trade {
	if tc.MaxTurnover == nil {
		return trades
	}
	total := p.TotalValue().Float64()
	if total <= 0 {
		return trades
	}

	turnoverValue := 0.0
	for _, t := range trades {
		turnoverValue += t.Value().Float64()
	}
	turnoverCap := *tc.MaxTurnover * total
	if turnoverValue <= turnoverCap || turnoverValue <= 0 {
		return trades
	}

	ratio := turnoverCap / turnoverValue
	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		newShares := t.Shares.Float64() * ratio
		shares, err := money.FromFloat64(newShares, 8)
		if err != nil {
			continue
		}
		t.Shares = shares
		if t.Shares.IsZero() {
			continue
		}
		out = append(out, t)
	}
	return out
}

func sumBuySell(trades []types.Trade) (buy, sell float64) {
	for _, t := range trades {
		if t.Action == types.ActionBuy {
			buy += t.Value().Float64()
		} else {
			sell += t.Value().Float64()
		}
	}
	return buy, sell
}
