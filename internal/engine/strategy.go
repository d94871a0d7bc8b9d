package engine

import (
	"context"

	"rebalancer/types"
)

// RebalanceStrategy is the abstract contract both SimpleRebalanceStrategy
// and CVaRRebalanceStrategy satisfy. The set of implementations is closed
// and small (a sum type, not open polymorphism) — see StrategyConfig for
// the dispatch point callers actually use.
type RebalanceStrategy interface {
	Rebalance(ctx context.Context, p types.Portfolio, tc TradingConstraints) (types.RebalanceResult, error)
}

// validatePortfolio runs the two checks every strategy's Rebalance must
// perform before doing any work: EmptyPortfolio and InvalidTargets.
func validatePortfolio(p types.Portfolio) error {
	if p.IsEmpty() {
		return ErrEmptyPortfolio
	}
	const epsilon = 1e-9
	if p.TargetWeightSum() > 1+epsilon {
		return ErrInvalidTargets
	}
	for _, pos := range p.Positions() {
		if pos.TargetAllocation < 0 {
			return ErrInvalidTargets
		}
	}
	return nil
}

// drift returns, for each position in Tickers() order, target_allocation
// minus current_allocation (both expressed as a fraction of total
// portfolio value, cash included) — the basis both strategies' trade
// generation starts from.
func drift(p types.Portfolio) map[string]float64 {
	total := p.TotalValue()
	out := make(map[string]float64, len(p.Tickers()))
	for _, pos := range p.Positions() {
		out[pos.Asset.Ticker] = pos.TargetAllocation - pos.CurrentAllocation(total)
	}
	return out
}

// estimateFinalAllocations projects the allocation each ticker would end
// up at after applying trades, without mutating the Portfolio: it works
// off the post-trade market values and post-trade total value (cash moves
// by the trades' net signed value).
func estimateFinalAllocations(p types.Portfolio, trades []types.Trade) map[string]float64 {
	deltaShares := make(map[string]float64)
	for _, t := range trades {
		sign := 1.0
		if t.Action == types.ActionSell {
			sign = -1.0
		}
		deltaShares[t.Ticker] += sign * t.Shares.Float64()
	}

	finalMarketValue := make(map[string]float64, len(p.Tickers()))
	for _, pos := range p.Positions() {
		price := pos.Asset.CurrentPrice.Float64()
		shares := pos.Shares.Float64() + deltaShares[pos.Asset.Ticker]
		finalMarketValue[pos.Asset.Ticker] = shares * price
	}

	finalCash := p.Cash.Float64()
	for _, t := range trades {
		if t.Action == types.ActionBuy {
			finalCash -= t.Value().Float64()
		} else {
			finalCash += t.Value().Float64()
		}
	}
	grandTotal := finalCash
	for _, mv := range finalMarketValue {
		grandTotal += mv
	}

	allocations := make(map[string]float64, len(finalMarketValue))
	if grandTotal <= 0 {
		for ticker := range finalMarketValue {
			allocations[ticker] = 0
		}
		return allocations
	}
	for ticker, mv := range finalMarketValue {
		allocations[ticker] = mv / grandTotal
	}
	return allocations
}

// maxAbs returns the largest absolute value in a map of drifts/weights.
func maxAbs(values map[string]float64) float64 {
	max := 0.0
	for _, v := range values {
		av := v
		if av < 0 {
			av = -av
		}
		if av > max {
			max = av
		}
	}
	return max
}
