package engine

import (
	"context"

	"rebalancer/money"
	"rebalancer/types"
)

// SimpleRebalanceStrategy generates trades directly from each position's
// drift, with no optimization: the baseline strategy every CVaR run is
// compared against.
type SimpleRebalanceStrategy struct{}

// Rebalance implements RebalanceStrategy.
func (s SimpleRebalanceStrategy) Rebalance(_ context.Context, p types.Portfolio, tc TradingConstraints) (types.RebalanceResult, error) {
	if err := validatePortfolio(p); err != nil {
		return types.RebalanceResult{}, err
	}

	driftByTicker := drift(p)
	maxDriftBefore := maxAbs(driftByTicker)
	total := p.TotalValue()

	trades := make([]types.Trade, 0, len(p.Tickers()))
	for _, pos := range p.Positions() {
		d := driftByTicker[pos.Asset.Ticker]
		if d == 0 {
			continue
		}

		tradeValue, err := money.FromFloat64(absf(d)*total.Float64(), 8)
		if err != nil {
			continue
		}
		shares := tradeValue.DivValue(pos.Asset.CurrentPrice)

		action := types.ActionSell
		if d > 0 {
			action = types.ActionBuy
		}
		trades = append(trades, types.Trade{
			Ticker:       pos.Asset.Ticker,
			Action:       action,
			Shares:       shares,
			CurrentPrice: pos.Asset.CurrentPrice,
			Reason:       driftReason(action, d),
		})
	}

	finalTrades, warn := applyConstraints(trades, p, tc, driftByTicker)
	return buildResult(p, finalTrades, tc, maxDriftBefore, warn), nil
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func driftReason(action types.TradeAction, drift float64) string {
	pct := absf(drift) * 100
	if action == types.ActionBuy {
		return formatReason("underweight", pct)
	}
	return formatReason("overweight", pct)
}
