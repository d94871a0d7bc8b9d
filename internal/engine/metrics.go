package engine

import (
	"math"
	"sync"
)

// DiagnosticMetrics holds the auxiliary portfolio-metric outputs. These are
// never on the rebalance hot path — callers compute them separately over a
// returns sample (e.g. the Simulator's output) purely for reporting.
type DiagnosticMetrics struct {
	Volatility  float64
	Sharpe      float64
	Sortino     float64
	MaxDrawdown float64
	CAGR        float64
}

// ComputeDiagnostics computes volatility/Sharpe/Sortino/max-drawdown (and,
// additionally, CAGR) over a returns sample, fanning each metric out to
// its own goroutine the way the teacher's report generator computed its
// per-metric totals concurrently.
func ComputeDiagnostics(periodReturns []float64, riskFreeRate float64, periodsPerYear float64) DiagnosticMetrics {
	var (
		wg sync.WaitGroup
		m  DiagnosticMetrics
	)

	wg.Add(5)
	go func() { defer wg.Done(); m.Volatility = volatility(periodReturns, periodsPerYear) }()
	go func() { defer wg.Done(); m.Sharpe = sharpe(periodReturns, riskFreeRate, periodsPerYear) }()
	go func() { defer wg.Done(); m.Sortino = sortino(periodReturns, riskFreeRate, periodsPerYear) }()
	go func() { defer wg.Done(); m.MaxDrawdown = maxDrawdown(periodReturns) }()
	go func() { defer wg.Done(); m.CAGR = cagr(periodReturns, periodsPerYear) }()
	wg.Wait()

	return m
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}

func volatility(returns []float64, periodsPerYear float64) float64 {
	return stdDev(returns) * math.Sqrt(periodsPerYear)
}

func sharpe(returns []float64, riskFreeRate, periodsPerYear float64) float64 {
	periodRf := riskFreeRate / periodsPerYear
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - periodRf
	}
	vol := stdDev(excess)
	if vol == 0 {
		return 0
	}
	return (mean(excess) / vol) * math.Sqrt(periodsPerYear)
}

// sortino uses downside-only standard deviation; returns +Inf if no
// negative excess returns exist, per spec.
func sortino(returns []float64, riskFreeRate, periodsPerYear float64) float64 {
	periodRf := riskFreeRate / periodsPerYear
	var downside []float64
	excessMean := 0.0
	for _, r := range returns {
		excess := r - periodRf
		excessMean += excess
		if excess < 0 {
			downside = append(downside, excess)
		}
	}
	if len(returns) > 0 {
		excessMean /= float64(len(returns))
	}
	if len(downside) == 0 {
		return math.Inf(1)
	}
	downsideDev := stdDev(downside)
	if downsideDev == 0 {
		return math.Inf(1)
	}
	return (excessMean / downsideDev) * math.Sqrt(periodsPerYear)
}

// maxDrawdown is the largest peak-to-trough decline of the cumulative
// equity curve built by compounding returns from 1.0.
func maxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	equity := 1.0
	peak := 1.0
	worst := 0.0
	for _, r := range returns {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		drawdown := (peak - equity) / peak
		if drawdown > worst {
			worst = drawdown
		}
	}
	return worst
}

// cagr is the compound annual growth rate implied by the returns sample,
// kept as a diagnostic-only convenience metric (not referenced by any
// invariant).
func cagr(returns []float64, periodsPerYear float64) float64 {
	n := len(returns)
	if n == 0 {
		return 0
	}
	cumulative := 1.0
	for _, r := range returns {
		cumulative *= 1 + r
	}
	years := float64(n) / periodsPerYear
	if years <= 0 {
		return cumulative - 1
	}
	return math.Pow(cumulative, 1/years) - 1
}
