package engine

import (
	"math/rand"
	"testing"
)

func TestCVaRAllEqual(t *testing.T) {
	returns := []float64{0.01, 0.01, 0.01, 0.01}
	if got := CVaR(returns, 0.95); got != -0.01 {
		t.Fatalf("got %v want -0.01", got)
	}
}

func TestCVaRGreaterOrEqualVaR(t *testing.T) {
	src := rand.New(rand.NewSource(1))
	returns := make([]float64, 1000)
	for i := range returns {
		returns[i] = src.NormFloat64() * 0.02
	}

	v := VaR(returns, 0.95)
	c := CVaR(returns, 0.95)
	if c < v {
		t.Fatalf("CVaR (%v) should be >= VaR (%v) for a loss-bearing sample", c, v)
	}
	if c < 0 {
		t.Fatalf("CVaR should be non-negative for a symmetric loss-bearing distribution, got %v", c)
	}
}

func TestCVaRMonotoneNonDecreasingInAlpha(t *testing.T) {
	src := rand.New(rand.NewSource(2))
	returns := make([]float64, 2000)
	for i := range returns {
		returns[i] = src.NormFloat64() * 0.02
	}

	// As alpha rises, the tail averaged over shrinks toward the single
	// worst observation, so CVaR (a loss magnitude) is non-decreasing.
	prev := CVaR(returns, 0.90)
	for _, alpha := range []float64{0.95, 0.975, 0.99} {
		cur := CVaR(returns, alpha)
		if cur < prev-1e-12 {
			t.Fatalf("CVaR decreased from alpha step: prev=%v cur=%v at alpha=%v", prev, cur, alpha)
		}
		prev = cur
	}
}

func TestQuantileLinearInterpolation(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	// median of [1,2,3,4] with linear interpolation is 2.5
	if got := quantile(data, 0.5); got != 2.5 {
		t.Fatalf("got %v want 2.5", got)
	}
}
