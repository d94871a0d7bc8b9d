package engine

import (
	"fmt"

	"rebalancer/money"
	"rebalancer/types"
)

// formatReason renders the human-readable trade reason both strategies
// use, e.g. "underweight by 3.2%" or "CVaR-optimized: underweight by 3.2%".
func formatReason(kind string, pct float64) string {
	return fmt.Sprintf("%s by %.1f%%", kind, pct)
}

// buildResult assembles the RebalanceResult shared tail every strategy's
// Rebalance ends with: totals, final allocations, and the diagnostic
// metrics block (turnover_pct, max_drift_before/after, warnings).
func buildResult(p types.Portfolio, trades []types.Trade, tc TradingConstraints, maxDriftBefore float64, warn pipelineWarnings) types.RebalanceResult {
	buyValue, sellValue := money.Zero, money.Zero
	for _, t := range trades {
		if t.Action == types.ActionBuy {
			buyValue = buyValue.Add(t.Value())
		} else {
			sellValue = sellValue.Add(t.Value())
		}
	}
	cost := tc.TransactionCost(buyValue.Add(sellValue))

	finalAllocations := estimateFinalAllocations(p, trades)

	total := p.TotalValue().Float64()
	turnover := buyValue.Add(sellValue).Float64()
	turnoverPct := 0.0
	if total > 0 {
		turnoverPct = turnover / total
	}

	maxDriftAfter := 0.0
	for _, pos := range p.Positions() {
		final := finalAllocations[pos.Asset.Ticker]
		d := absf(pos.TargetAllocation - final)
		if d > maxDriftAfter {
			maxDriftAfter = d
		}
	}

	var warnings []string
	if warn.liquidityUnreachable {
		warnings = append(warnings, errLiquidityUnreachable.Error())
	}

	return types.RebalanceResult{
		Trades:           trades,
		TotalBuyValue:    buyValue,
		TotalSellValue:   sellValue,
		EstimatedCost:    cost,
		FinalAllocations: finalAllocations,
		Metrics: types.Metrics{
			TurnoverPct:    turnoverPct,
			MaxDriftBefore: maxDriftBefore,
			MaxDriftAfter:  maxDriftAfter,
			Warnings:       warnings,
		},
	}
}
