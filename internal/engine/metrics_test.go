package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeDiagnosticsAllPositiveReturnsHasInfiniteSortino(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.015, 0.03}
	m := ComputeDiagnostics(returns, 0.0, 252)
	require.True(t, math.IsInf(m.Sortino, 1), "no negative excess returns should yield +Inf Sortino")
	require.Greater(t, m.Volatility, 0.0)
}

func TestMaxDrawdownOnMonotonicDeclineIsCumulative(t *testing.T) {
	returns := []float64{-0.10, -0.10, -0.10}
	dd := maxDrawdown(returns)
	require.InDelta(t, 1-0.9*0.9*0.9, dd, 1e-9)
}

func TestMaxDrawdownFlatReturnsIsZero(t *testing.T) {
	require.Equal(t, 0.0, maxDrawdown([]float64{0, 0, 0}))
}

func TestCAGRCompoundsAcrossPeriods(t *testing.T) {
	returns := []float64{0.10, 0.10}
	got := cagr(returns, 1) // 1 period-per-year, 2 periods = 2 years
	want := math.Pow(1.1*1.1, 0.5) - 1
	require.InDelta(t, want, got, 1e-9)
}

func TestSharpeZeroVolatilityIsZero(t *testing.T) {
	require.Equal(t, 0.0, sharpe([]float64{0.01}, 0.0, 252))
}
