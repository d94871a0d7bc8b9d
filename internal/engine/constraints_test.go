package engine

import (
	"testing"

	"rebalancer/money"
)

func TestDefaultConstraints(t *testing.T) {
	c := DefaultConstraints()
	if c.MinTradeValue.String() != "10.00" {
		t.Fatalf("min_trade_value: got %s", c.MinTradeValue.String())
	}
	if c.RebalanceThreshold != 0.02 {
		t.Fatalf("rebalance_threshold: got %v", c.RebalanceThreshold)
	}
	if c.MinLiquidity != 0.00 {
		t.Fatalf("min_liquidity: got %v", c.MinLiquidity)
	}
	if c.TransactionCostBps != 0.0025 {
		t.Fatalf("transaction_cost_bps: got %v", c.TransactionCostBps)
	}
	if !c.AllowFractionalShares {
		t.Fatal("expected fractional shares allowed by default")
	}
}

func TestNamedPresets(t *testing.T) {
	tests := []struct {
		name         string
		preset       TradingConstraints
		minLiquidity float64
		threshold    float64
	}{
		{"conservative", ConservativeConstraints(), 0.50, 0.01},
		{"moderate", ModerateConstraints(), 0.10, 0.02},
		{"risky", RiskyConstraints(), 0.05, 0.05},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.preset.MinLiquidity != tc.minLiquidity {
				t.Fatalf("min_liquidity: got %v want %v", tc.preset.MinLiquidity, tc.minLiquidity)
			}
			if tc.preset.RebalanceThreshold != tc.threshold {
				t.Fatalf("threshold: got %v want %v", tc.preset.RebalanceThreshold, tc.threshold)
			}
		})
	}
}

func TestTransactionCost(t *testing.T) {
	c := DefaultConstraints()
	cost := c.TransactionCost(money.MustFromString("741.50"))
	if cost.String() != "1.85" {
		t.Fatalf("got %s want 1.85", cost.String())
	}
}
