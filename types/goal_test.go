package types

import (
	"testing"

	"rebalancer/money"
)

func TestGoalFintualMetrics(t *testing.T) {
	aapl := Position{
		Asset:            mkAsset("AAPL", "180.50"),
		Shares:           money.MustFromString("10"),
		TargetAllocation: 1.0,
		Deposited:        money.MustFromString("1500.00"),
	}
	p, err := NewPortfolio("p1", money.MustFromString("0"), aapl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target := money.MustFromString("5000.00")
	g := Goal{
		ID:           "g1",
		Name:         "retirement",
		Type:         GoalTypeRetirement,
		RiskProfile:  RiskProfileModerate,
		Portfolio:    p,
		TargetAmount: &target,
	}

	// balance = 10 * 180.50 = 1805.00
	if got := g.Balance().String(); got != "1805.00" {
		t.Fatalf("balance: got %s", got)
	}
	if got := g.DepositadoNeto().String(); got != "1500.00" {
		t.Fatalf("depositado_neto: got %s", got)
	}
	// ganado = 1805 - 1500 = 305
	if got := g.Ganado().String(); got != "305.00" {
		t.Fatalf("ganado: got %s", got)
	}

	pct, ok := g.ProgressPercentage()
	if !ok {
		t.Fatal("expected progress percentage to be defined")
	}
	if diff := pct - (100 * 1805.0 / 5000.0); diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("progress_percentage mismatch: got %v", pct)
	}
}

func TestGoalProgressUndefinedWithoutTarget(t *testing.T) {
	p, _ := NewPortfolio("p1", money.MustFromString("0"))
	g := Goal{Portfolio: p}
	if _, ok := g.ProgressPercentage(); ok {
		t.Fatal("expected progress percentage to be undefined without a target")
	}
}
